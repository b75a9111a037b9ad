package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/events"
	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/storage"
)

// maxVersionRetries bounds optimistic-concurrency retries on versioned rows.
const maxVersionRetries = 3

// ActionLogger appends to the admin audit trail without blocking.
type ActionLogger interface {
	LogAction(actor audit.Actor, action, targetType, targetID string, details map[string]any)
}

// Upload is one file received in a multipart request.
type Upload struct {
	Field    string
	Filename string
	Data     []byte
}

// MissingDocumentsError lists the mandatory slots an upload left empty.
type MissingDocumentsError struct {
	Slots []kyc.Slot
}

func (e *MissingDocumentsError) Error() string {
	names := make([]string, len(e.Slots))
	for i, s := range e.Slots {
		names[i] = string(s)
	}
	return ErrMandatoryDocuments.Error() + ": " + strings.Join(names, ", ")
}

func (e *MissingDocumentsError) Unwrap() error { return ErrMandatoryDocuments }

type VendorService struct {
	vendors repository.VendorRepository
	store   storage.ObjectStore
	audit   ActionLogger
	events  events.Publisher

	requireVerifiedDocs bool
	now                 func() time.Time
}

func NewVendorService(
	vendors repository.VendorRepository,
	store storage.ObjectStore,
	auditLog ActionLogger,
	publisher events.Publisher,
	requireVerifiedDocs bool,
) *VendorService {
	return &VendorService{
		vendors:             vendors,
		store:               store,
		audit:               auditLog,
		events:              publisher,
		requireVerifiedDocs: requireVerifiedDocs,
		now:                 time.Now,
	}
}

func (s *VendorService) byUser(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	v, err := s.vendors.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	return v, err
}

func (s *VendorService) byID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	v, err := s.vendors.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	return v, err
}

// ForUser returns the vendor profile owned by the user.
func (s *VendorService) ForUser(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	return s.byUser(ctx, userID)
}

func (s *VendorService) Profile(ctx context.Context, userID uuid.UUID) (*dto.VendorProfileResponse, error) {
	v, err := s.byUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.VendorProfileResponse{Vendor: v, Status: Status(v)}, nil
}

// UpsertProfile creates the vendor record on first call and merges partial
// updates afterwards. Address and bank details merge field by field.
func (s *VendorService) UpsertProfile(ctx context.Context, userID uuid.UUID, req *dto.VendorProfileRequest, image *Upload) (*dto.VendorProfileResponse, error) {
	var imageURL string
	var uploaded *storage.Object
	if image != nil {
		data, name, err := storage.Normalize(image.Filename, image.Data)
		if err != nil {
			return nil, err
		}
		obj, err := s.store.Put(ctx, "vendors/"+userID.String()+"/profile", name, data)
		if err != nil {
			return nil, fmt.Errorf("failed to store profile image: %w", err)
		}
		uploaded = &obj
		imageURL = obj.URL
	}

	v, err := s.upsert(ctx, userID, req, imageURL)
	if err != nil {
		if uploaded != nil {
			s.deleteObject(uploaded.ID)
		}
		return nil, err
	}
	return &dto.VendorProfileResponse{Vendor: v, Status: Status(v)}, nil
}

func (s *VendorService) upsert(ctx context.Context, userID uuid.UUID, req *dto.VendorProfileRequest, imageURL string) (*models.Vendor, error) {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		v, err := s.byUser(ctx, userID)
		if errors.Is(err, ErrVendorNotFound) {
			v = &models.Vendor{UserID: userID}
			applyProfile(v, req, imageURL)
			err = s.vendors.Create(ctx, v)
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to create vendor: %w", err)
			}
			slog.Info("vendor profile created", "vendor_id", v.ID.String(), "user_id", userID.String(), "action", "vendor_create")
			return v, nil
		}
		if err != nil {
			return nil, err
		}

		applyProfile(v, req, imageURL)
		err = s.vendors.SaveVersioned(ctx, v)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save vendor: %w", err)
		}
		return v, nil
	}
	return nil, ErrConcurrentUpdate
}

func applyProfile(v *models.Vendor, req *dto.VendorProfileRequest, imageURL string) {
	setStr(&v.BusinessName, req.BusinessName)
	setStr(&v.BusinessType, req.BusinessType)
	setStr(&v.Description, req.Description)
	setStr(&v.ContactEmail, req.ContactEmail)
	setStr(&v.ContactPhone, req.ContactPhone)
	if req.Categories != nil {
		cats := make([]string, 0, len(req.Categories))
		for _, c := range req.Categories {
			cats = append(cats, strings.TrimSpace(c))
		}
		v.Categories = datatypes.JSONSlice[string](cats)
	}
	if imageURL != "" {
		v.ProfileImage = imageURL
	}

	if p := req.Address; p != nil {
		addr := v.Address.Data()
		setStr(&addr.Line1, p.Line1)
		setStr(&addr.Line2, p.Line2)
		setStr(&addr.City, p.City)
		setStr(&addr.State, p.State)
		setStr(&addr.Country, p.Country)
		setStr(&addr.Pincode, p.Pincode)
		v.Address = datatypes.NewJSONType(addr)
	}

	if p := req.BankDetails; p != nil {
		bank := v.BankDetails.Data()
		changed := setStr(&bank.AccountHolder, p.AccountHolder)
		changed = setStr(&bank.AccountNumber, p.AccountNumber) || changed
		changed = setStr(&bank.IFSC, upper(p.IFSC)) || changed
		changed = setStr(&bank.BankName, p.BankName) || changed
		changed = setStr(&bank.UPIID, p.UPIID) || changed
		if changed || bank.Status == "" {
			bank.Status = kyc.StatusPending
			bank.Reason = nil
		}
		v.BankDetails = datatypes.NewJSONType(bank)
	}
}

// setStr copies a trimmed patch value and reports whether it changed dst.
func setStr(dst *string, src *string) bool {
	if src == nil {
		return false
	}
	val := strings.TrimSpace(*src)
	if *dst == val {
		return false
	}
	*dst = val
	return true
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}

type slotFile struct {
	index int
	file  Upload
}

// UploadDocuments stores the uploaded files into their slots. The mandatory
// slot check runs before anything is written to object storage, and files a
// slot held before are removed only after the new map is persisted.
func (s *VendorService) UploadDocuments(ctx context.Context, userID uuid.UUID, files []Upload) (*dto.VendorProfileResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	bySlot := make(map[kyc.Slot][]slotFile)
	for _, f := range files {
		slot, idx, err := kyc.ParseFieldKey(f.Field)
		if err != nil {
			return nil, err
		}
		bySlot[slot] = append(bySlot[slot], slotFile{index: idx, file: f})
	}
	incoming := make([]kyc.Slot, 0, len(bySlot))
	for slot, list := range bySlot {
		if !slot.Repeatable() && len(list) > 1 {
			return nil, fmt.Errorf("%w: %s", kyc.ErrSingularSlot, slot)
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].index < list[j].index })
		incoming = append(incoming, slot)
	}

	v, err := s.byUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := v.Docs().MissingMandatory(incoming...); len(missing) > 0 {
		return nil, &MissingDocumentsError{Slots: missing}
	}

	type prepared struct {
		data []byte
		name string
	}
	ready := make(map[kyc.Slot][]prepared, len(bySlot))
	for slot, list := range bySlot {
		for _, sf := range list {
			data, name, err := storage.Normalize(sf.file.Filename, sf.file.Data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sf.file.Field, err)
			}
			ready[slot] = append(ready[slot], prepared{data: data, name: name})
		}
	}

	now := s.now()
	folder := "vendors/" + v.ID.String() + "/documents"
	records := make(map[kyc.Slot][]kyc.Record, len(ready))
	var stored []string
	for slot, list := range ready {
		for _, p := range list {
			obj, err := s.store.Put(ctx, folder, p.name, p.data)
			if err != nil {
				s.deleteObjects(stored)
				return nil, fmt.Errorf("failed to store %s: %w", slot, err)
			}
			stored = append(stored, obj.ID)
			records[slot] = append(records[slot], kyc.NewRecord(obj.URL, obj.ID, now))
		}
	}

	var replaced []kyc.Record
	saved, err := s.mutate(ctx, func() (*models.Vendor, error) { return s.byUser(ctx, userID) }, func(v *models.Vendor) error {
		docs := v.Docs().Clone()
		replaced = replaced[:0]
		for slot, recs := range records {
			replaced = append(replaced, docs.Replace(slot, recs)...)
		}
		v.Documents = datatypes.NewJSONType(docs)
		return nil
	})
	if err != nil {
		s.deleteObjects(stored)
		return nil, err
	}

	old := make([]string, 0, len(replaced))
	for _, r := range replaced {
		if r.StorageID != "" {
			old = append(old, r.StorageID)
		}
	}
	s.deleteObjects(old)

	slog.Info("vendor documents uploaded", "vendor_id", saved.ID.String(), "slots", len(records), "action", "document_upload")
	return &dto.VendorProfileResponse{Vendor: saved, Status: Status(saved)}, nil
}

// mutate reloads, applies fn and writes conditionally on the version,
// retrying a bounded number of times on a concurrent write.
func (s *VendorService) mutate(ctx context.Context, load func() (*models.Vendor, error), fn func(*models.Vendor) error) (*models.Vendor, error) {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		v, err := load()
		if err != nil {
			return nil, err
		}
		if err := fn(v); err != nil {
			return nil, err
		}
		err = s.vendors.SaveVersioned(ctx, v)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save vendor: %w", err)
		}
		return v, nil
	}
	return nil, ErrConcurrentUpdate
}

func (s *VendorService) deleteObject(id string) {
	s.deleteObjects([]string{id})
}

// deleteObjects removes stored files in the background; failures only log.
func (s *VendorService) deleteObjects(ids []string) {
	if len(ids) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, id := range ids {
			if err := s.store.Delete(ctx, id); err != nil {
				slog.Error("failed to delete stored file", "storage_id", id, "action", "storage_delete", "error", err.Error())
			}
		}
	}()
}

func (s *VendorService) VerifyDocument(ctx context.Context, actor audit.Actor, req *dto.VerifyDocumentRequest) (*models.Vendor, error) {
	slot, err := kyc.ParseSlot(req.DocumentType)
	if err != nil {
		return nil, err
	}
	status := kyc.Status(req.Status)
	reason := strings.TrimSpace(req.Reason)

	v, err := s.mutate(ctx, func() (*models.Vendor, error) { return s.byID(ctx, req.VendorID) }, func(v *models.Vendor) error {
		docs := v.Docs().Clone()
		if err := docs.Review(slot, req.Index, status, reason, s.now()); err != nil {
			return err
		}
		v.Documents = datatypes.NewJSONType(docs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	details := map[string]any{"documentType": string(slot), "status": string(status)}
	if req.Index != nil {
		details["index"] = *req.Index
	}
	if reason != "" {
		details["reason"] = reason
	}
	s.audit.LogAction(actor, audit.ActionVerifyDocument, "vendor", v.ID.String(), details)
	return v, nil
}

// SetApproval approves or rejects the whole vendor profile. Rejection needs a
// reason. When configured, approval also needs every mandatory document to
// be verified.
func (s *VendorService) SetApproval(ctx context.Context, actor audit.Actor, req *dto.ApproveVendorRequest) (*models.Vendor, error) {
	approve := *req.IsApproved
	reason := strings.TrimSpace(req.Reason)
	if !approve && reason == "" {
		return nil, ErrReasonRequired
	}

	v, err := s.mutate(ctx, func() (*models.Vendor, error) { return s.byID(ctx, req.VendorID) }, func(v *models.Vendor) error {
		if approve && s.requireVerifiedDocs && !v.Docs().MandatoryVerified() {
			return ErrDocumentsNotVerified
		}
		v.IsApproved = approve
		if approve {
			now := s.now()
			v.ApprovedAt = &now
			v.RejectionReason = nil
		} else {
			v.ApprovedAt = nil
			v.RejectionReason = &reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := audit.ActionApproveVendor
	details := map[string]any{"isApproved": approve}
	if !approve {
		action = audit.ActionRejectVendor
		details["reason"] = reason
	}
	s.audit.LogAction(actor, action, "vendor", v.ID.String(), details)
	events.PublishAsync(s.events, events.VendorApproval, map[string]any{
		"vendorId":   v.ID,
		"userId":     v.UserID,
		"isApproved": approve,
		"reason":     v.RejectionReason,
	})
	return v, nil
}

func (s *VendorService) VerifyBankDetails(ctx context.Context, actor audit.Actor, req *dto.VerifyBankRequest) (*models.Vendor, error) {
	status := kyc.Status(req.Status)
	reason := strings.TrimSpace(req.Reason)
	if status == kyc.StatusRejected && reason == "" {
		return nil, ErrReasonRequired
	}

	v, err := s.mutate(ctx, func() (*models.Vendor, error) { return s.byID(ctx, req.VendorID) }, func(v *models.Vendor) error {
		bank := v.BankDetails.Data()
		if bank.AccountNumber == "" && bank.UPIID == "" {
			return ErrBankDetailsMissing
		}
		bank.Status = status
		bank.Reason = nil
		if status == kyc.StatusRejected {
			bank.Reason = &reason
		}
		v.BankDetails = datatypes.NewJSONType(bank)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(actor, audit.ActionVerifyBank, "vendor", v.ID.String(), map[string]any{"status": string(status), "reason": reason})
	return v, nil
}

func (s *VendorService) Get(ctx context.Context, id uuid.UUID) (*dto.VendorProfileResponse, error) {
	v, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.VendorProfileResponse{Vendor: v, Status: Status(v)}, nil
}

func (s *VendorService) List(ctx context.Context, f repository.VendorFilter) (dto.Paginated[models.Vendor], error) {
	f.Page = f.Page.Normalize()
	vendors, total, err := s.vendors.List(ctx, f)
	if err != nil {
		return dto.Paginated[models.Vendor]{}, fmt.Errorf("failed to list vendors: %w", err)
	}
	return dto.NewPaginated(vendors, total, f.Page.Page, f.Page.Limit), nil
}

// Status derives the onboarding checklist. ProfileCompleted depends only on
// the profile fields and mandatory documents, never on approval.
func Status(v *models.Vendor) dto.VendorStatus {
	docs := v.Docs()
	missing := docs.MissingMandatory()
	if missing == nil {
		missing = []kyc.Slot{}
	}

	hasCategory := false
	for _, c := range v.Categories {
		if strings.TrimSpace(c) != "" {
			hasCategory = true
			break
		}
	}

	return dto.VendorStatus{
		ProfileCompleted:  strings.TrimSpace(v.BusinessName) != "" && hasCategory && len(missing) == 0,
		DocumentsUploaded: len(missing) == 0,
		DocumentsVerified: docs.MandatoryVerified(),
		IsApproved:        v.IsApproved,
		BankVerified:      v.BankDetails.Data().Status == kyc.StatusVerified,
		MissingDocuments:  missing,
		RejectionReason:   v.RejectionReason,
		DocumentSummary:   docs.Summary(),
	}
}
