package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/gateway"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/storage"
)

// --- users ---

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.User
	fails error

	// beforeCreate runs ahead of the uniqueness check, standing in for a
	// concurrent insert of the same identifier.
	beforeCreate func()
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.byID[u.ID] = &cp
	return u
}

func (f *fakeUsers) get(id uuid.UUID) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeUsers) findBy(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.findBy(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	return f.findBy(func(u *models.User) bool { return u.EmailValue() == email })
}

func (f *fakeUsers) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return f.findBy(func(u *models.User) bool { return u.PhoneValue() == phone })
}

func (f *fakeUsers) FindByProvider(_ context.Context, provider, id string) (*models.User, error) {
	return f.findBy(func(u *models.User) bool {
		var v *string
		switch provider {
		case models.ProviderGoogle:
			v = u.GoogleID
		case models.ProviderFacebook:
			v = u.FacebookID
		case models.ProviderApple:
			v = u.AppleUserID
		}
		return v != nil && *v == id
	})
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	if f.fails != nil {
		return f.fails
	}
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if (u.Email != nil && other.EmailValue() == *u.Email) || (u.Phone != nil && other.PhoneValue() == *u.Phone) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "role":
			u.Role = v.(string)
		case "email":
			s := v.(string)
			u.Email = &s
		case "phone":
			s := v.(string)
			u.Phone = &s
		case "password":
			u.Password = v.(string)
		case "profile_image":
			u.ProfileImage = v.(string)
		case "is_email_verified":
			u.IsEmailVerified = v.(bool)
		case "is_phone_verified":
			u.IsPhoneVerified = v.(bool)
		case "is_deleted":
			u.IsDeleted = v.(bool)
		case "deleted_at":
			t := v.(time.Time)
			u.DeletedAt = &t
		case "last_login_at":
			t := v.(time.Time)
			u.LastLoginAt = &t
		case "google_id":
			s := v.(string)
			u.GoogleID = &s
		case "facebook_id":
			s := v.(string)
			u.FacebookID = &s
		case "apple_user_id":
			s := v.(string)
			u.AppleUserID = &s
		case "notification_prefs":
			u.NotificationPrefs = v.(datatypes.JSONType[models.NotificationPreferences])
		}
	}
	return nil
}

func (f *fakeUsers) List(_ context.Context, _ repository.UserFilter) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

// --- refresh tokens ---

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

func (f *fakeTokens) Create(_ context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tokens[t.TokenHash] = &cp
	return nil
}

func (f *fakeTokens) Consume(_ context.Context, hash string, now time.Time) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[hash]
	if !ok || t.Revoked || !t.ExpiresAt.After(now) {
		return nil, repository.ErrNotFound
	}
	t.Revoked = true
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[hash]; ok {
		t.Revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokens) active(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID && !t.Revoked {
			n++
		}
	}
	return n
}

// --- vendors ---

type fakeVendors struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.Vendor
	conflicts int // SaveVersioned calls that lose to a concurrent write first
}

func newFakeVendors() *fakeVendors {
	return &fakeVendors{byID: make(map[uuid.UUID]*models.Vendor)}
}

func (f *fakeVendors) add(v *models.Vendor) *models.Vendor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Version == 0 {
		v.Version = 1
	}
	cp := *v
	f.byID[v.ID] = &cp
	return v
}

func (f *fakeVendors) get(id uuid.UUID) *models.Vendor {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.byID[id]
	return &cp
}

func (f *fakeVendors) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVendors) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byID {
		if v.UserID == userID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVendors) Create(_ context.Context, v *models.Vendor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.UserID == v.UserID {
			return repository.ErrDuplicate
		}
	}
	v.ID = uuid.New()
	v.Version = 1
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVendors) SaveVersioned(_ context.Context, v *models.Vendor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[v.ID]
	if !ok {
		return repository.ErrStale
	}
	if f.conflicts > 0 {
		f.conflicts--
		stored.Version++
		return repository.ErrStale
	}
	if stored.Version != v.Version {
		return repository.ErrStale
	}
	v.Version++
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVendors) List(_ context.Context, _ repository.VendorFilter) ([]models.Vendor, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Vendor, 0, len(f.byID))
	for _, v := range f.byID {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

// --- object storage ---

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, folder, filename string, data []byte) (storage.Object, error) {
	if f.putErr != nil {
		return storage.Object{}, f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := folder + "/" + uuid.NewString() + "-" + filename
	f.objects[id] = data
	return storage.Object{URL: "https://cdn.test/" + id, ID: id}, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.deleted...)
	sort.Strings(out)
	return out
}

func (f *fakeStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// --- audit ---

type auditCall struct {
	Action   string
	TargetID string
	Details  map[string]any
}

type fakeAudit struct {
	mu    sync.Mutex
	calls []auditCall
}

func (f *fakeAudit) LogAction(_ audit.Actor, action, _ string, targetID string, details map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, auditCall{Action: action, TargetID: targetID, Details: details})
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Action
	}
	return out
}

// --- catalog ---

type fakeCatalog struct {
	mu       sync.Mutex
	packages map[uuid.UUID]*models.Package
	items    map[uuid.UUID]*models.CatalogItem
	approved map[uuid.UUID]string
	staleN   int

	detailWrites int
	activeWrites int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		packages: make(map[uuid.UUID]*models.Package),
		items:    make(map[uuid.UUID]*models.CatalogItem),
		approved: make(map[uuid.UUID]string),
	}
}

func (f *fakeCatalog) EnsurePackage(_ context.Context, vendorID uuid.UUID) (*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[vendorID]
	if !ok {
		p = &models.Package{ID: uuid.New(), VendorID: vendorID}
		f.packages[vendorID] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) FindPackage(_ context.Context, vendorID uuid.UUID) (*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[vendorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) ListItems(_ context.Context, vendorID uuid.UUID) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CatalogItem
	for _, it := range f.items {
		if it.VendorID == vendorID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCatalog) FindItem(_ context.Context, vendorID, itemID uuid.UUID) (*models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.VendorID != vendorID {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeCatalog) FindItemByID(_ context.Context, itemID uuid.UUID) (*models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeCatalog) InsertItem(_ context.Context, item *models.CatalogItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.CreatedAt = time.Now()
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeCatalog) UpdateDetails(_ context.Context, vendorID, itemID uuid.UUID, version int, details datatypes.JSON, active *bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.VendorID != vendorID {
		return repository.ErrStale
	}
	if f.staleN > 0 {
		f.staleN--
		it.Version++
		return repository.ErrStale
	}
	if it.Version != version {
		return repository.ErrStale
	}
	it.Details = details
	if active != nil {
		it.IsActive = *active
	}
	it.Version++
	f.detailWrites++
	return nil
}

func (f *fakeCatalog) SetItemActive(_ context.Context, vendorID, itemID uuid.UUID, category string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.VendorID != vendorID || it.Category != category {
		return repository.ErrNotFound
	}
	it.IsActive = active
	f.activeWrites++
	return nil
}

func (f *fakeCatalog) SetCategoryActive(_ context.Context, vendorID uuid.UUID, category string, active bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, it := range f.items {
		if it.VendorID == vendorID && it.Category == category {
			it.IsActive = active
			n++
		}
	}
	return n, nil
}

func (f *fakeCatalog) DeleteItem(_ context.Context, vendorID, itemID uuid.UUID, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.VendorID != vendorID || it.Category != category {
		return repository.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeCatalog) ListPublic(_ context.Context, flt repository.PublicItemFilter) ([]repository.PublicItem, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.PublicItem
	for _, it := range f.items {
		name, ok := f.approved[it.VendorID]
		if !ok || !it.IsActive || (flt.Category != "" && it.Category != flt.Category) {
			continue
		}
		out = append(out, repository.PublicItem{CatalogItem: *it, BusinessName: name})
	}
	return out, int64(len(out)), nil
}

func (f *fakeCatalog) FindPublic(_ context.Context, itemID uuid.UUID) (*repository.PublicItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || !it.IsActive {
		return nil, repository.ErrNotFound
	}
	name, ok := f.approved[it.VendorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.PublicItem{CatalogItem: *it, BusinessName: name}, nil
}

// --- bookings ---

type fakeBookings struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byID: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookings) get(id uuid.UUID) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakeBookings) put(b *models.Booking) *models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	cp := *b
	f.byID[b.ID] = &cp
	return b
}

func (f *fakeBookings) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) FindByOrderID(_ context.Context, orderID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if b.OrderID() == orderID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookings) List(_ context.Context, flt repository.BookingFilter) ([]models.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.byID {
		if flt.UserID != nil && b.UserID != *flt.UserID {
			continue
		}
		if flt.VendorID != nil && b.VendorID != *flt.VendorID {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

// update applies fn when cond holds, mirroring a conditional UPDATE.
func (f *fakeBookings) update(id uuid.UUID, cond func(*models.Booking) bool, fn func(*models.Booking)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok || !cond(b) {
		return repository.ErrStale
	}
	fn(b)
	return nil
}

func (f *fakeBookings) SetOrderID(_ context.Context, id uuid.UUID, orderID string) error {
	return f.update(id,
		func(b *models.Booking) bool {
			return b.PaymentStatus != models.PaymentPaid && b.Status == models.BookingPending
		},
		func(b *models.Booking) { b.GatewayOrderID = &orderID; b.PaymentStatus = models.PaymentPending },
	)
}

func (f *fakeBookings) MarkPaid(_ context.Context, id uuid.UUID, p repository.PaymentUpdate) error {
	return f.update(id,
		func(b *models.Booking) bool {
			return b.PaymentStatus != models.PaymentPaid && b.Status != models.BookingCancelled
		},
		func(b *models.Booking) {
			b.PaymentStatus = models.PaymentPaid
			b.Status = models.BookingConfirmed
			b.GatewayPaymentID = p.PaymentID
			b.GatewaySignature = p.Signature
			b.PaidAt = &p.PaidAt
		},
	)
}

func (f *fakeBookings) MarkPaymentFailed(_ context.Context, id uuid.UUID) error {
	return f.update(id,
		func(b *models.Booking) bool { return b.PaymentStatus == models.PaymentPending },
		func(b *models.Booking) { b.PaymentStatus = models.PaymentFailed },
	)
}

func (f *fakeBookings) MarkPayout(_ context.Context, id uuid.UUID, at time.Time) error {
	return f.update(id,
		func(b *models.Booking) bool {
			return b.PaymentStatus == models.PaymentPaid && b.RefundStatus == models.RefundNone && b.PayoutStatus == models.PayoutPending
		},
		func(b *models.Booking) { b.PayoutStatus = models.PayoutPaid; b.PayoutAt = &at },
	)
}

func (f *fakeBookings) MarkRefunded(_ context.Context, id uuid.UUID, reason string, at time.Time) (string, error) {
	var prev string
	err := f.update(id,
		func(b *models.Booking) bool {
			return b.PaymentStatus == models.PaymentPaid && b.RefundStatus == models.RefundNone
		},
		func(b *models.Booking) {
			prev = b.PayoutStatus
			b.RefundStatus = models.RefundRefunded
			b.RefundAmount = b.TotalPrice
			b.Status = models.BookingCancelled
			b.PayoutStatus = models.PayoutPending
			b.PayoutAt = nil
			b.CancelReason = reason
			b.RefundedAt = &at
		},
	)
	return prev, err
}

func (f *fakeBookings) Cancel(_ context.Context, id, userID uuid.UUID, reason string) error {
	return f.update(id,
		func(b *models.Booking) bool {
			return b.UserID == userID && b.Status == models.BookingPending && b.PaymentStatus != models.PaymentPaid
		},
		func(b *models.Booking) { b.Status = models.BookingCancelled; b.CancelReason = reason },
	)
}

func (f *fakeBookings) CompleteDue(_ context.Context, travelBefore, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.byID {
		if b.Status == models.BookingConfirmed && b.PaymentStatus == models.PaymentPaid &&
			b.RefundStatus == models.RefundNone && b.TravelDate.Before(travelBefore) {
			b.Status = models.BookingCompleted
			b.CompletedAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) ExpireUnpaid(_ context.Context, createdBefore time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.byID {
		if b.Status == models.BookingPending && b.PaymentStatus != models.PaymentPaid && b.CreatedAt.Before(createdBefore) {
			b.Status = models.BookingCancelled
			n++
		}
	}
	return n, nil
}

// --- payment gateway ---

type fakeGateway struct {
	createOrderFn func(ctx context.Context, creds gateway.Credentials, req gateway.OrderRequest) (*gateway.Order, error)
}

func (f *fakeGateway) CreateOrder(ctx context.Context, creds gateway.Credentials, req gateway.OrderRequest) (*gateway.Order, error) {
	if f.createOrderFn != nil {
		return f.createOrderFn(ctx, creds, req)
	}
	return &gateway.Order{ID: "order_" + uuid.NewString()[:8], Amount: gateway.MinorUnits(req.Amount), Currency: req.Currency}, nil
}

type staticCreds gateway.Credentials

func (c staticCreds) Razorpay(context.Context) (gateway.Credentials, error) {
	return gateway.Credentials(c), nil
}

// --- coupons ---

type fakeCoupons struct {
	mu       sync.Mutex
	percent  map[string]float64
	maxUses  map[string]int
	used     map[string]int
	released []string
}

func newFakeCoupons() *fakeCoupons {
	return &fakeCoupons{percent: map[string]float64{}, maxUses: map[string]int{}, used: map[string]int{}}
}

func (f *fakeCoupons) Redeem(_ context.Context, code string, amount float64, _ time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pct, ok := f.percent[code]
	if !ok || (f.maxUses[code] > 0 && f.used[code] >= f.maxUses[code]) {
		return 0, ErrInvalidCoupon
	}
	f.used[code]++
	return amount * pct / 100, nil
}

func (f *fakeCoupons) Release(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.used[code]--
	f.released = append(f.released, code)
	return nil
}
