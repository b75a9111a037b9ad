package reviews

import (
	"time"

	"github.com/google/uuid"
)

// Review is a traveller's rating of a completed booking, one per booking.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"bookingId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"itemId"`
	VendorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"vendorId"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ItemReviews is one page of an item's reviews plus its rating summary.
type ItemReviews struct {
	ItemID        uuid.UUID `json:"itemId"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int64     `json:"reviewCount"`
	Reviews       []Review  `json:"reviews"`
	Page          int       `json:"page"`
	Limit         int       `json:"limit"`
}
