package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/otp"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

type UserService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	now    func() time.Time
}

func NewUserService(users repository.UserRepository, tokens repository.RefreshTokenRepository) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, ErrAccountDeleted
	}
	return user, nil
}

// Update applies a partial profile change. A new email or phone must not
// belong to another account and resets the matching verified flag.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ProfileImage != nil {
		fields["profile_image"] = *req.ProfileImage
	}
	if req.NotificationPreferences != nil {
		fields["notification_prefs"] = datatypes.NewJSONType(*req.NotificationPreferences)
	}

	if req.Email != nil {
		email := otp.NormalizeIdentifier(*req.Email)
		if email != user.EmailValue() {
			if err := s.ensureFree(ctx, s.users.FindByEmail, email, id, ErrEmailTaken); err != nil {
				return nil, err
			}
			fields["email"] = email
			fields["is_email_verified"] = false
		}
	}
	if req.Phone != nil {
		phone := otp.NormalizeIdentifier(*req.Phone)
		if phone != user.PhoneValue() {
			if err := s.ensureFree(ctx, s.users.FindByPhone, phone, id, ErrPhoneTaken); err != nil {
				return nil, err
			}
			fields["phone"] = phone
			fields["is_phone_verified"] = false
		}
	}

	if len(fields) == 0 {
		return user, nil
	}
	if err := s.users.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// unique index caught a concurrent claim of the same email or phone
			if _, ok := fields["email"]; ok {
				return nil, ErrEmailTaken
			}
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *UserService) ensureFree(
	ctx context.Context,
	find func(context.Context, string) (*models.User, error),
	value string,
	self uuid.UUID,
	taken error,
) error {
	other, err := find(ctx, value)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up user: %w", err)
	case other.ID != self:
		return taken
	}
	return nil
}

// Delete soft-deletes the account and revokes every refresh token.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users.Update(ctx, id, map[string]any{"is_deleted": true, "deleted_at": s.now()}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	slog.Info("user deleted", "user_id", id.String(), "action", "delete_account")
	return nil
}

func (s *UserService) List(ctx context.Context, f repository.UserFilter) (dto.Paginated[models.User], error) {
	f.Page = f.Page.Normalize()
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return dto.Paginated[models.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return dto.NewPaginated(users, total, f.Page.Page, f.Page.Limit), nil
}
