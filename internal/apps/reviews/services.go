package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

var (
	ErrNotReviewable   = errors.New("only completed bookings can be reviewed")
	ErrAlreadyReviewed = errors.New("booking already reviewed")
	ErrReviewNotFound  = errors.New("review not found")
)

type BookingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type ContentChecker interface {
	Check(text string, allowContact bool) error
}

type Service struct {
	db         *gorm.DB
	bookings   BookingLookup
	moderation ContentChecker
}

func NewService(db *gorm.DB, bookings BookingLookup, moderation ContentChecker) *Service {
	return &Service{db: db, bookings: bookings, moderation: moderation}
}

// Create stores the traveller's review of their own completed booking.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Review, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, services.ErrBookingNotFound
	}
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, services.ErrBookingNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, services.ErrForbidden
	}
	if b.Status != models.BookingCompleted {
		return nil, ErrNotReviewable
	}
	comment := strings.TrimSpace(req.Comment)
	if err := s.moderation.Check(comment, false); err != nil {
		return nil, err
	}

	r := &Review{
		BookingID: b.ID,
		UserID:    userID,
		ItemID:    b.ItemID,
		VendorID:  b.VendorID,
		Rating:    req.Rating,
		Comment:   comment,
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	slog.Info("review created", "action", "review_create", "booking_id", b.ID.String(), "rating", r.Rating)
	return r, nil
}

func (s *Service) ForItem(ctx context.Context, itemID uuid.UUID, p repository.Page) (*ItemReviews, error) {
	p = p.Normalize()
	var summary struct {
		Count int64
		Avg   float64
	}
	err := s.db.WithContext(ctx).Model(&Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("item_id = ?", itemID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}

	var list []Review
	err = s.db.WithContext(ctx).Where("item_id = ?", itemID).
		Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return &ItemReviews{
		ItemID:        itemID,
		AverageRating: math.Round(summary.Avg*10) / 10,
		ReviewCount:   summary.Count,
		Reviews:       list,
		Page:          p.Page,
		Limit:         p.Limit,
	}, nil
}

// Delete is the admin takedown for a review.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Review{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
