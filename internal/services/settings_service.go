package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/gateway"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/notify"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

// Well-known setting keys.
const (
	KeySMTPHost              = "smtp_host"
	KeySMTPPort              = "smtp_port"
	KeySMTPUser              = "smtp_user"
	KeySMTPPassword          = "smtp_password"
	KeySMTPFrom              = "smtp_from"
	KeySendGridAPIKey        = "sendgrid_api_key"
	KeySMSAuthKey            = "sms_auth_key"
	KeySMSSenderID           = "sms_sender_id"
	KeySMSTemplateID         = "sms_template_id"
	KeyRazorpayKeyID         = "razorpay_key_id"
	KeyRazorpayKeySecret     = "razorpay_key_secret"
	KeyRazorpayWebhookSecret = "razorpay_webhook_secret"
	KeyGoogleClientIDs       = "google_client_ids"
	KeyFacebookAppID         = "facebook_app_id"
	KeyFacebookAppSecret     = "facebook_app_secret"
	KeyAppleClientIDs        = "apple_client_ids"
)

var secretKeys = map[string]bool{
	KeySMTPPassword:          true,
	KeySendGridAPIKey:        true,
	KeySMSAuthKey:            true,
	KeyRazorpayKeySecret:     true,
	KeyRazorpayWebhookSecret: true,
	KeyFacebookAppSecret:     true,
}

var settingKeyPattern = regexp.MustCompile(`^[a-z0-9_.]{2,100}$`)

type OAuthConfig struct {
	GoogleClientIDs   []string
	FacebookAppID     string
	FacebookAppSecret string
	AppleClientIDs    []string
}

// SettingsService reads provider credentials from the settings table on every
// call, falling back to environment values for absent keys.
type SettingsService struct {
	repo  repository.SettingsRepository
	cfg   *config.Config
	audit ActionLogger
}

func NewSettingsService(repo repository.SettingsRepository, cfg *config.Config, auditLog ActionLogger) *SettingsService {
	return &SettingsService{repo: repo, cfg: cfg, audit: auditLog}
}

type settingValues map[string]string

func (v settingValues) str(key, fallback string) string {
	if s, ok := v[key]; ok && s != "" {
		return s
	}
	return fallback
}

func (v settingValues) num(key string, fallback int) int {
	if n, err := strconv.Atoi(v[key]); err == nil {
		return n
	}
	return fallback
}

func (s *SettingsService) load(ctx context.Context) (settingValues, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make(settingValues, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *SettingsService) EmailConfig(ctx context.Context) (notify.EmailConfig, error) {
	v, err := s.load(ctx)
	if err != nil {
		return notify.EmailConfig{}, err
	}
	return notify.EmailConfig{
		SMTPHost:       v.str(KeySMTPHost, s.cfg.SMTPHost),
		SMTPPort:       v.num(KeySMTPPort, s.cfg.SMTPPort),
		SMTPUser:       v.str(KeySMTPUser, s.cfg.SMTPUser),
		SMTPPassword:   v.str(KeySMTPPassword, s.cfg.SMTPPassword),
		From:           v.str(KeySMTPFrom, s.cfg.SMTPFrom),
		SendGridAPIKey: v.str(KeySendGridAPIKey, s.cfg.SendGridAPIKey),
	}, nil
}

func (s *SettingsService) SMSConfig(ctx context.Context) (notify.SMSConfig, error) {
	v, err := s.load(ctx)
	if err != nil {
		return notify.SMSConfig{}, err
	}
	return notify.SMSConfig{
		AuthKey:    v.str(KeySMSAuthKey, s.cfg.SMSAuthKey),
		SenderID:   v.str(KeySMSSenderID, s.cfg.SMSSenderID),
		TemplateID: v.str(KeySMSTemplateID, s.cfg.SMSTemplateID),
	}, nil
}

func (s *SettingsService) Razorpay(ctx context.Context) (gateway.Credentials, error) {
	v, err := s.load(ctx)
	if err != nil {
		return gateway.Credentials{}, err
	}
	return gateway.Credentials{
		KeyID:         v.str(KeyRazorpayKeyID, s.cfg.RazorpayKeyID),
		KeySecret:     v.str(KeyRazorpayKeySecret, s.cfg.RazorpayKeySecret),
		WebhookSecret: v.str(KeyRazorpayWebhookSecret, s.cfg.RazorpayWebhookSecret),
	}, nil
}

func (s *SettingsService) OAuth(ctx context.Context) (OAuthConfig, error) {
	v, err := s.load(ctx)
	if err != nil {
		return OAuthConfig{}, err
	}
	return OAuthConfig{
		GoogleClientIDs:   config.SplitCSV(v.str(KeyGoogleClientIDs, s.cfg.GoogleClientIDs)),
		FacebookAppID:     v.str(KeyFacebookAppID, s.cfg.FacebookAppID),
		FacebookAppSecret: v.str(KeyFacebookAppSecret, s.cfg.FacebookAppSecret),
		AppleClientIDs:    config.SplitCSV(v.str(KeyAppleClientIDs, s.cfg.AppleClientIDs)),
	}, nil
}

// List returns every stored setting with secret values masked.
func (s *SettingsService) List(ctx context.Context) ([]dto.SettingResponse, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make([]dto.SettingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toSettingResponse(r))
	}
	return out, nil
}

func (s *SettingsService) Set(ctx context.Context, actor audit.Actor, key string, req *dto.SettingRequest) (*dto.SettingResponse, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !settingKeyPattern.MatchString(key) {
		return nil, fmt.Errorf("%w: invalid key %q", ErrInvalidSetting, key)
	}

	kind := req.Type
	if kind == "" {
		kind = "string"
	}
	if err := checkSettingValue(kind, req.Value); err != nil {
		return nil, err
	}

	secret := secretKeys[key]
	if req.Secret != nil {
		secret = *req.Secret
	}

	row := models.Setting{Key: key, Value: req.Value, Type: kind, Secret: secret}
	if err := s.repo.Upsert(ctx, &row); err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	// the value itself is never written to the audit trail
	s.audit.LogAction(actor, audit.ActionUpdateSetting, "setting", key, map[string]any{"type": kind, "secret": secret})
	resp := toSettingResponse(row)
	return &resp, nil
}

func (s *SettingsService) Delete(ctx context.Context, actor audit.Actor, key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	err := s.repo.Delete(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSettingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	s.audit.LogAction(actor, audit.ActionDeleteSetting, "setting", key, nil)
	return nil
}

func checkSettingValue(kind, value string) error {
	switch kind {
	case "bool":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: expected bool", ErrInvalidSetting)
		}
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: expected int", ErrInvalidSetting)
		}
	case "json":
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("%w: expected json", ErrInvalidSetting)
		}
	case "string":
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSetting, kind)
	}
	return nil
}

func toSettingResponse(r models.Setting) dto.SettingResponse {
	value := r.Value
	if r.Secret {
		value = maskSecret(value)
	}
	return dto.SettingResponse{Key: r.Key, Value: value, Type: r.Type, Secret: r.Secret, UpdatedAt: r.UpdatedAt}
}

func maskSecret(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
