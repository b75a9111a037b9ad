package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

type fakeBookings map[uuid.UUID]*models.Booking

func (f fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	b, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

// The service has no database here; every case must fail before insert.
func TestCreate_Eligibility(t *testing.T) {
	traveller := uuid.New()
	completed := &models.Booking{ID: uuid.New(), UserID: traveller, Status: models.BookingCompleted}
	confirmed := &models.Booking{ID: uuid.New(), UserID: traveller, Status: models.BookingConfirmed}
	svc := NewService(nil, fakeBookings{completed.ID: completed, confirmed.ID: confirmed}, services.NewModerationService())
	ctx := context.Background()

	cases := []struct {
		name    string
		userID  uuid.UUID
		req     CreateRequest
		wantErr error
	}{
		{"unknown booking", traveller, CreateRequest{BookingID: uuid.NewString(), Rating: 5}, services.ErrBookingNotFound},
		{"malformed id", traveller, CreateRequest{BookingID: "x", Rating: 5}, services.ErrBookingNotFound},
		{"someone else's booking", uuid.New(), CreateRequest{BookingID: completed.ID.String(), Rating: 5}, services.ErrForbidden},
		{"not completed", traveller, CreateRequest{BookingID: confirmed.ID.String(), Rating: 4}, ErrNotReviewable},
		{"contact details", traveller, CreateRequest{BookingID: completed.ID.String(), Rating: 4, Comment: "Call me on +91 98765 43210"}, services.ErrContentRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.userID, &tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
