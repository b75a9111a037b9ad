package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/notify"
	"github.com/ermradulsharma/pahadigo-sub000/internal/otp"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

type OTPIssuer interface {
	Generate(ctx context.Context, identifier, role string) error
	Verify(ctx context.Context, identifier, code string) (string, error)
}

type OAuthSource interface {
	OAuth(ctx context.Context) (OAuthConfig, error)
}

type AuthService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	otp    OTPIssuer
	social SocialVerifier
	oauth  OAuthSource
	cfg    *config.Config
	now    func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	otpIssuer OTPIssuer,
	social SocialVerifier,
	oauth OAuthSource,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		otp:    otpIssuer,
		social: social,
		oauth:  oauth,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *AuthService) RequestOTP(ctx context.Context, req *dto.OTPRequest) error {
	return s.otp.Generate(ctx, req.Target(), req.Role)
}

// VerifyOTP consumes the code and logs the user in, creating the account on
// first use. The role the code was issued for must match an existing account.
func (s *AuthService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	identifier := otp.NormalizeIdentifier(req.Target())
	role, err := s.otp.Verify(ctx, identifier, req.OTP)
	if err != nil {
		return nil, err
	}

	byEmail := notify.IsEmail(identifier)
	user, err := s.findByIdentifier(ctx, identifier, byEmail)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user != nil {
		return s.otpLogin(ctx, user, role, byEmail)
	}

	now := s.now()
	user = &models.User{
		Role:              role,
		NotificationPrefs: defaultPrefs(),
		LastLoginAt:       &now,
	}
	if byEmail {
		user.Email = &identifier
		user.IsEmailVerified = true
		user.AuthProvider = models.ProviderLocal
	} else {
		user.Phone = &identifier
		user.IsPhoneVerified = true
		user.AuthProvider = models.ProviderPhone
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent verify for the same identifier
			existing, ferr := s.findByIdentifier(ctx, identifier, byEmail)
			if ferr != nil {
				return nil, fmt.Errorf("failed to load user: %w", ferr)
			}
			return s.otpLogin(ctx, existing, role, byEmail)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID.String(), "role", role, "action", "register")
	return s.generateTokenPair(ctx, user, true)
}

// otpLogin signs in an existing account after a successful code check.
func (s *AuthService) otpLogin(ctx context.Context, user *models.User, role string, byEmail bool) (*dto.AuthResponse, error) {
	if user.IsDeleted {
		return nil, ErrAccountDeleted
	}
	if role != models.RolePending && user.Role != models.RolePending && user.Role != role {
		return nil, ErrRoleMismatch
	}
	fields := map[string]any{"last_login_at": s.now()}
	if byEmail {
		fields["is_email_verified"] = true
	} else {
		fields["is_phone_verified"] = true
	}
	if err := s.users.Update(ctx, user.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.generateTokenPair(ctx, user, false)
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string, byEmail bool) (*models.User, error) {
	if byEmail {
		return s.users.FindByEmail(ctx, identifier)
	}
	return s.users.FindByPhone(ctx, identifier)
}

// SocialLogin verifies a provider token and links or creates the account:
// first by provider id, then by email.
func (s *AuthService) SocialLogin(ctx context.Context, provider string, req *dto.SocialLoginRequest) (*dto.AuthResponse, error) {
	oauth, err := s.oauth.OAuth(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := s.social.Verify(ctx, provider, req.Token, oauth)
	if err != nil {
		slog.Warn("social token verification failed", "provider", provider, "error", err.Error())
		return nil, err
	}

	user, err := s.users.FindByProvider(ctx, provider, identity.ProviderID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil && identity.Email != "" {
		user, err = s.users.FindByEmail(ctx, identity.Email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		if user != nil {
			if err := s.users.Update(ctx, user.ID, map[string]any{providerColumn(provider): identity.ProviderID}); err != nil {
				return nil, fmt.Errorf("failed to link %s account: %w", provider, err)
			}
			setProviderID(user, provider, identity.ProviderID)
		}
	}

	if user != nil {
		if user.IsDeleted {
			return nil, ErrAccountDeleted
		}
		if req.Role != "" && user.Role != models.RolePending && user.Role != req.Role {
			return nil, ErrRoleMismatch
		}
		if err := s.users.Update(ctx, user.ID, map[string]any{"last_login_at": s.now()}); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		return s.generateTokenPair(ctx, user, false)
	}

	role := req.Role
	if role == "" {
		role = models.RolePending
	}
	name := identity.Name
	if name == "" {
		name = req.Name
	}
	now := s.now()
	user = &models.User{
		Name:              name,
		Role:              role,
		AuthProvider:      provider,
		IsEmailVerified:   identity.EmailVerified,
		NotificationPrefs: defaultPrefs(),
		LastLoginAt:       &now,
	}
	if identity.Email != "" {
		email := identity.Email
		user.Email = &email
	}
	setProviderID(user, provider, identity.ProviderID)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create %s user: %w", provider, err)
	}
	return s.generateTokenPair(ctx, user, true)
}

func providerColumn(provider string) string {
	switch provider {
	case models.ProviderGoogle:
		return "google_id"
	case models.ProviderFacebook:
		return "facebook_id"
	}
	return "apple_user_id"
}

func setProviderID(u *models.User, provider, id string) {
	switch provider {
	case models.ProviderGoogle:
		u.GoogleID = &id
	case models.ProviderFacebook:
		u.FacebookID = &id
	case models.ProviderApple:
		u.AppleUserID = &id
	}
}

func (s *AuthService) SelectRole(ctx context.Context, userID uuid.UUID, role string) (*dto.AuthResponse, error) {
	if role != models.RoleVendor && role != models.RoleTraveller {
		return nil, otp.ErrInvalidRole
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Role != models.RolePending {
		return nil, ErrRoleAlreadySet
	}
	if err := s.users.Update(ctx, userID, map[string]any{"role": role}); err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	user.Role = role
	return s.generateTokenPair(ctx, user, false)
}

func (s *AuthService) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Role != models.RoleAdmin || user.Password == "" || user.IsDeleted {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	_ = s.users.Update(ctx, user.ID, map[string]any{"last_login_at": s.now()})
	return s.generateTokenPair(ctx, user, false)
}

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// account with that email. An existing password is never overwritten.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.users.Create(ctx, &models.User{
			Name:              "Administrator",
			Email:             &email,
			Password:          string(hash),
			Role:              models.RoleAdmin,
			AuthProvider:      models.ProviderLocal,
			IsEmailVerified:   true,
			NotificationPrefs: defaultPrefs(),
		})
	case err != nil:
		return err
	}

	fields := map[string]any{"role": models.RoleAdmin}
	if user.Password == "" {
		fields["password"] = string(hash)
	}
	return s.users.Update(ctx, user.ID, fields)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	stored, err := s.tokens.Consume(ctx, hashToken(req.RefreshToken), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.IsDeleted {
		return nil, ErrAccountDeleted
	}
	return s.generateTokenPair(ctx, user, false)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.tokens.RevokeByHash(ctx, hashToken(req.RefreshToken))
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, isNew bool) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
		IsNewUser:    isNew,
		User:         user,
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"role":  user.Role,
		"email": user.EmailValue(),
		"phone": user.PhoneValue(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.tokens.Create(ctx, &record); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func defaultPrefs() datatypes.JSONType[models.NotificationPreferences] {
	return datatypes.NewJSONType(models.DefaultNotificationPreferences())
}
