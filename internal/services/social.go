package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

const FacebookGraphURL = "https://graph.facebook.com"

// SocialIdentity is what a provider vouches for after token verification.
type SocialIdentity struct {
	Provider      string
	ProviderID    string
	Email         string
	EmailVerified bool
	Name          string
}

type SocialVerifier interface {
	Verify(ctx context.Context, provider, token string, oauth OAuthConfig) (*SocialIdentity, error)
}

type socialVerifier struct {
	google  *JWKSClient
	apple   *JWKSClient
	graph   *resty.Client
	timeout time.Duration
}

func NewSocialVerifier(google, apple *JWKSClient, graphURL string, timeout time.Duration) SocialVerifier {
	if graphURL == "" {
		graphURL = FacebookGraphURL
	}
	return &socialVerifier{
		google:  google,
		apple:   apple,
		graph:   resty.New().SetBaseURL(graphURL),
		timeout: timeout,
	}
}

func (v *socialVerifier) Verify(ctx context.Context, provider, token string, oauth OAuthConfig) (*SocialIdentity, error) {
	switch provider {
	case models.ProviderGoogle:
		claims, err := v.google.Verify(ctx, token, GoogleIssuers, oauth.GoogleClientIDs)
		if err != nil {
			return nil, err
		}
		return &SocialIdentity{
			Provider:      provider,
			ProviderID:    claims.Subject,
			Email:         strings.ToLower(claims.Email),
			EmailVerified: claims.Verified(),
			Name:          claims.Name,
		}, nil
	case models.ProviderApple:
		claims, err := v.apple.Verify(ctx, token, AppleIssuers, oauth.AppleClientIDs)
		if err != nil {
			return nil, err
		}
		return &SocialIdentity{
			Provider:      provider,
			ProviderID:    claims.Subject,
			Email:         strings.ToLower(claims.Email),
			EmailVerified: claims.Verified(),
		}, nil
	case models.ProviderFacebook:
		return v.facebook(ctx, token, oauth)
	}
	return nil, fmt.Errorf("%w: unsupported provider %q", ErrInvalidSocialToken, provider)
}

func (v *socialVerifier) facebook(ctx context.Context, token string, oauth OAuthConfig) (*SocialIdentity, error) {
	if oauth.FacebookAppID == "" || oauth.FacebookAppSecret == "" {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var debug struct {
		Data struct {
			AppID   string `json:"app_id"`
			IsValid bool   `json:"is_valid"`
			UserID  string `json:"user_id"`
		} `json:"data"`
	}
	resp, err := v.graph.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"input_token":  token,
			"access_token": oauth.FacebookAppID + "|" + oauth.FacebookAppSecret,
		}).
		SetResult(&debug).
		Get("/debug_token")
	if err := providerError(ctx, resp, err); err != nil {
		return nil, err
	}
	if !debug.Data.IsValid || debug.Data.AppID != oauth.FacebookAppID || debug.Data.UserID == "" {
		return nil, fmt.Errorf("%w: facebook token rejected", ErrInvalidSocialToken)
	}

	var me struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	resp, err = v.graph.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"fields": "id,name,email", "access_token": token}).
		SetResult(&me).
		Get("/me")
	if err := providerError(ctx, resp, err); err != nil {
		return nil, err
	}
	if me.ID != debug.Data.UserID {
		return nil, fmt.Errorf("%w: facebook user mismatch", ErrInvalidSocialToken)
	}

	return &SocialIdentity{
		Provider:      models.ProviderFacebook,
		ProviderID:    me.ID,
		Email:         strings.ToLower(me.Email),
		EmailVerified: me.Email != "",
		Name:          me.Name,
	}, nil
}

func providerError(ctx context.Context, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrProviderTimeout
		}
		return fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if resp.StatusCode() == 400 || resp.StatusCode() == 401 {
		return fmt.Errorf("%w: provider status %d", ErrInvalidSocialToken, resp.StatusCode())
	}
	if resp.IsError() {
		return fmt.Errorf("%w: provider status %d", ErrProviderFailure, resp.StatusCode())
	}
	return nil
}
