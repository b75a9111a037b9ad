package inquiries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

var ErrInquiryNotFound = errors.New("inquiry not found")

// ContentChecker screens free text before it is stored.
type ContentChecker interface {
	Check(text string, allowContact bool) error
}

type Service struct {
	db         *gorm.DB
	moderation ContentChecker
	audit      services.ActionLogger
}

func NewService(db *gorm.DB, moderation ContentChecker, auditLog services.ActionLogger) *Service {
	return &Service{db: db, moderation: moderation, audit: auditLog}
}

// Create stores an inquiry. Contact details are allowed in the text since
// the sender is asking to be contacted.
func (s *Service) Create(ctx context.Context, userID *uuid.UUID, req *CreateRequest) (*Inquiry, error) {
	for _, text := range []string{req.Subject, req.Message} {
		if err := s.moderation.Check(text, true); err != nil {
			return nil, err
		}
	}

	inq := &Inquiry{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(inq).Error; err != nil {
		return nil, fmt.Errorf("failed to save inquiry: %w", err)
	}
	slog.Info("inquiry received", "action", "inquiry_create", "inquiry_id", inq.ID.String())
	return inq, nil
}

func (s *Service) List(ctx context.Context, status string, p repository.Page) (dto.Paginated[Inquiry], error) {
	p = p.Normalize()
	q := s.db.WithContext(ctx).Model(&Inquiry{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return dto.Paginated[Inquiry]{}, err
	}
	var list []Inquiry
	if err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error; err != nil {
		return dto.Paginated[Inquiry]{}, err
	}
	return dto.NewPaginated(list, total, p.Page, p.Limit), nil
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, req *UpdateRequest) (*Inquiry, error) {
	var inq Inquiry
	if err := s.db.WithContext(ctx).First(&inq, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}
	inq.Status = req.Status
	inq.AdminNote = strings.TrimSpace(req.AdminNote)
	if err := s.db.WithContext(ctx).Model(&inq).Select("status", "admin_note").Updates(&inq).Error; err != nil {
		return nil, fmt.Errorf("failed to update inquiry: %w", err)
	}
	s.audit.LogAction(actor, audit.ActionUpdateInquiry, "inquiry", inq.ID.String(), map[string]any{"status": inq.Status})
	return &inq, nil
}
