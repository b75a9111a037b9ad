package services

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	AppleJWKSURL  = "https://appleid.apple.com/auth/keys"
)

var (
	GoogleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}
	AppleIssuers  = []string{"https://appleid.apple.com"}
)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksCache struct {
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	mu        sync.RWMutex
}

// JWKSClient verifies RS256 ID tokens against a provider's published keys.
// Keys are cached for a day and refetched when an unknown kid shows up.
type JWKSClient struct {
	cache   *jwksCache
	client  *resty.Client
	url     string
	timeout time.Duration
}

// IDClaims are the claims shared by Google and Apple identity tokens.
type IDClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
}

func (c IDClaims) Verified() bool {
	switch v := c.EmailVerified.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func NewJWKSClient(url string, timeout time.Duration) *JWKSClient {
	return &JWKSClient{
		cache:   &jwksCache{keys: make(map[string]*rsa.PublicKey)},
		client:  resty.New(),
		url:     url,
		timeout: timeout,
	}
}

func (c *JWKSClient) fetchKeys(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var set struct {
		Keys []jwk `json:"keys"`
	}
	resp, err := c.client.R().SetContext(ctx).SetResult(&set).Get(c.url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrProviderTimeout
		}
		return fmt.Errorf("%w: fetch jwks: %v", ErrProviderFailure, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: jwks endpoint returned status %d", ErrProviderFailure, resp.StatusCode())
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()
	c.cache.keys = keys
	c.cache.expiresAt = time.Now().Add(24 * time.Hour)
	return nil
}

func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

func (c *JWKSClient) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.cache.mu.RLock()
	if key, ok := c.cache.keys[kid]; ok && time.Now().Before(c.cache.expiresAt) {
		c.cache.mu.RUnlock()
		return key, nil
	}
	c.cache.mu.RUnlock()

	if err := c.fetchKeys(ctx); err != nil {
		return nil, err
	}

	c.cache.mu.RLock()
	defer c.cache.mu.RUnlock()
	if key, ok := c.cache.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: unknown key id %q", ErrInvalidSocialToken, kid)
}

// Verify checks signature, expiry, issuer and audience of an ID token.
func (c *JWKSClient) Verify(ctx context.Context, token string, issuers, audiences []string) (*IDClaims, error) {
	if len(audiences) == 0 {
		return nil, ErrNotConfigured
	}

	var claims IDClaims
	var keyErr error
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, err := c.publicKey(ctx, kid)
		keyErr = err
		return key, err
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(keyErr, ErrProviderTimeout) || errors.Is(keyErr, ErrProviderFailure) {
			return nil, keyErr
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSocialToken, err)
	}

	if !slices.Contains(issuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidSocialToken, claims.Issuer)
	}
	if !slices.ContainsFunc(claims.Audience, func(a string) bool { return slices.Contains(audiences, a) }) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidSocialToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSocialToken)
	}
	return &claims, nil
}
