package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

type fakeStats struct {
	monthlyFn func(ctx context.Context, since time.Time) ([]repository.MonthlyPoint, error)
}

func (f *fakeStats) Counts(context.Context) (repository.Counts, error) {
	return repository.Counts{Users: 10, Travellers: 7, Vendors: 3, PendingVendors: 1}, nil
}

func (f *fakeStats) Revenue(context.Context) (float64, error) { return 12345.678, nil }

func (f *fakeStats) Monthly(ctx context.Context, since time.Time) ([]repository.MonthlyPoint, error) {
	return f.monthlyFn(ctx, since)
}

func (f *fakeStats) ByCategory(context.Context, time.Time) ([]repository.CategoryPoint, error) {
	return nil, nil
}

type fakeAuditReader struct {
	got audit.Filter
}

func (f *fakeAuditReader) List(_ context.Context, flt audit.Filter) ([]audit.Entry, int64, error) {
	f.got = flt
	return []audit.Entry{{Action: audit.ActionRefund}}, 1, nil
}

func TestAdminStats(t *testing.T) {
	svc := NewAdminService(&fakeStats{}, &fakeAuditReader{}, "INR")
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Users)
	assert.Equal(t, 12345.68, stats.Revenue)
	assert.Equal(t, "INR", stats.Currency)
}

func TestAnalytics_FillsEmptyMonths(t *testing.T) {
	stats := &fakeStats{monthlyFn: func(_ context.Context, since time.Time) ([]repository.MonthlyPoint, error) {
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), since)
		return []repository.MonthlyPoint{
			{Month: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Bookings: 4, Revenue: 1000.005},
			{Month: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Bookings: 1, Revenue: 250},
		}, nil
	}}
	svc := NewAdminService(stats, &fakeAuditReader{}, "INR")
	svc.now = func() time.Time { return time.Date(2026, 4, 18, 12, 0, 0, 0, time.UTC) }

	resp, err := svc.Analytics(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, resp.Monthly, 4)
	months := make([]time.Month, len(resp.Monthly))
	for i, p := range resp.Monthly {
		months[i] = p.Month.Month()
	}
	assert.Equal(t, []time.Month{time.January, time.February, time.March, time.April}, months)
	assert.Zero(t, resp.Monthly[0].Bookings)
	assert.Equal(t, int64(4), resp.Monthly[1].Bookings)
	assert.Zero(t, resp.Monthly[2].Bookings)
	assert.Equal(t, 250.0, resp.Monthly[3].Revenue)
	assert.NotNil(t, resp.ByCategory)
}

func TestAnalytics_ClampsWindow(t *testing.T) {
	var since time.Time
	stats := &fakeStats{monthlyFn: func(_ context.Context, s time.Time) ([]repository.MonthlyPoint, error) {
		since = s
		return nil, nil
	}}
	svc := NewAdminService(stats, &fakeAuditReader{}, "INR")
	svc.now = func() time.Time { return time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC) }

	resp, err := svc.Analytics(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, resp.Monthly, defaultAnalyticsMonths)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), since)

	resp, err = svc.Analytics(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, resp.Monthly, maxAnalyticsMonths)
}

func TestAuditLogs_NormalizesPaging(t *testing.T) {
	reader := &fakeAuditReader{}
	svc := NewAdminService(&fakeStats{}, reader, "INR")

	page, err := svc.AuditLogs(context.Background(), audit.Filter{Action: audit.ActionRefund, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, reader.got.Page)
	assert.Equal(t, 20, reader.got.Limit)
	assert.Equal(t, int64(1), page.Total)
}

// --- settings ---

type fakeSettings struct {
	rows map[string]models.Setting
}

func (f *fakeSettings) All(context.Context) ([]models.Setting, error) {
	out := make([]models.Setting, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSettings) Upsert(_ context.Context, s *models.Setting) error {
	f.rows[s.Key] = *s
	return nil
}

func (f *fakeSettings) Delete(_ context.Context, key string) error {
	if _, ok := f.rows[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, key)
	return nil
}

func TestSettings_OverrideEnvironment(t *testing.T) {
	repo := &fakeSettings{rows: map[string]models.Setting{}}
	cfg := &config.Config{RazorpayKeyID: "env_key", RazorpayKeySecret: "env_secret", GoogleClientIDs: "a, b"}
	log := &fakeAudit{}
	svc := NewSettingsService(repo, cfg, log)
	ctx := context.Background()
	actor := audit.Actor{AdminID: uuid.New()}

	creds, err := svc.Razorpay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "env_key", creds.KeyID)

	resp, err := svc.Set(ctx, actor, "Razorpay_Key_Secret", &dto.SettingRequest{Value: "db_secret_1234"})
	require.NoError(t, err)
	assert.True(t, resp.Secret)
	assert.Equal(t, "****1234", resp.Value)

	creds, err = svc.Razorpay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "env_key", creds.KeyID)
	assert.Equal(t, "db_secret_1234", creds.KeySecret)

	oauth, err := svc.OAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, oauth.GoogleClientIDs)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "****1234", list[0].Value)

	require.Len(t, log.calls, 1)
	assert.NotContains(t, log.calls[0].Details, "value")

	require.NoError(t, svc.Delete(ctx, actor, "razorpay_key_secret"))
	assert.ErrorIs(t, svc.Delete(ctx, actor, "razorpay_key_secret"), ErrSettingNotFound)
	assert.Equal(t, []string{audit.ActionUpdateSetting, audit.ActionDeleteSetting}, log.actions())
}

func TestSettings_TypeChecks(t *testing.T) {
	svc := NewSettingsService(&fakeSettings{rows: map[string]models.Setting{}}, &config.Config{}, &fakeAudit{})
	ctx := context.Background()
	actor := audit.Actor{}

	tests := []struct {
		key   string
		req   dto.SettingRequest
		valid bool
	}{
		{"feature.flag", dto.SettingRequest{Value: "true", Type: "bool"}, true},
		{"feature.flag", dto.SettingRequest{Value: "maybe", Type: "bool"}, false},
		{"otp.length", dto.SettingRequest{Value: "6", Type: "int"}, true},
		{"otp.length", dto.SettingRequest{Value: "six", Type: "int"}, false},
		{"banner.config", dto.SettingRequest{Value: `{"a":1}`, Type: "json"}, true},
		{"banner.config", dto.SettingRequest{Value: `{a:1}`, Type: "json"}, false},
		{"bad key!", dto.SettingRequest{Value: "x"}, false},
	}
	for _, tt := range tests {
		req := tt.req
		_, err := svc.Set(ctx, actor, tt.key, &req)
		if tt.valid {
			assert.NoError(t, err, tt.key)
		} else {
			assert.ErrorIs(t, err, ErrInvalidSetting, tt.key)
		}
	}
}

// --- policies ---

type fakePolicies struct {
	rows map[string]models.Policy
}

func (f *fakePolicies) Find(_ context.Context, target, kind string) (*models.Policy, error) {
	p, ok := f.rows[target+"/"+kind]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakePolicies) List(_ context.Context, target string) ([]models.Policy, error) {
	var out []models.Policy
	for _, p := range f.rows {
		if target == "" || p.Target == target {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicies) Upsert(_ context.Context, p *models.Policy) error {
	f.rows[p.Target+"/"+p.Type] = *p
	return nil
}

func (f *fakePolicies) Delete(_ context.Context, target, kind string) error {
	if _, ok := f.rows[target+"/"+kind]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, target+"/"+kind)
	return nil
}

func TestPolicies_FallBackToAll(t *testing.T) {
	repo := &fakePolicies{rows: map[string]models.Policy{}}
	log := &fakeAudit{}
	svc := NewPolicyService(repo, log)
	ctx := context.Background()
	actor := audit.Actor{AdminID: uuid.New()}

	_, err := svc.Upsert(ctx, actor, "ALL", "terms", &dto.PolicyRequest{Title: " Terms ", Content: "<p>be kind</p>"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, actor, "vendor", "terms", &dto.PolicyRequest{Title: "Vendor terms", Content: "<p>pay on time</p>"})
	require.NoError(t, err)

	p, err := svc.Get(ctx, "traveller", "terms")
	require.NoError(t, err)
	assert.Equal(t, models.PolicyTargetAll, p.Target)
	assert.Equal(t, "Terms", p.Title)

	p, err = svc.Get(ctx, "vendor", "terms")
	require.NoError(t, err)
	assert.Equal(t, "Vendor terms", p.Title)

	_, err = svc.Get(ctx, "vendor", "privacy")
	assert.ErrorIs(t, err, ErrPolicyNotFound)
	_, err = svc.Get(ctx, "aliens", "terms")
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	list, err := svc.List(ctx, "vendor")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, actor, "vendor", "terms"))
	assert.ErrorIs(t, svc.Delete(ctx, actor, "vendor", "terms"), ErrPolicyNotFound)
	assert.Equal(t, []string{audit.ActionUpsertPolicy, audit.ActionUpsertPolicy, audit.ActionDeletePolicy}, log.actions())
}

// --- users ---

func TestUserUpdate_EmailUniquenessAndVerification(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := NewUserService(users, tokens)
	ctx := context.Background()

	taken := "taken@example.com"
	users.add(&models.User{Email: &taken})
	email := "me@example.com"
	me := users.add(&models.User{Email: &email, IsEmailVerified: true, Role: models.RoleTraveller})

	_, err := svc.Update(ctx, me.ID, &dto.UpdateProfileRequest{Email: strPtr("Taken@Example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Update(ctx, me.ID, &dto.UpdateProfileRequest{Name: strPtr(" Me "), Email: strPtr("ME@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Me", got.Name)
	assert.True(t, got.IsEmailVerified, "unchanged email keeps its verification")

	got, err = svc.Update(ctx, me.ID, &dto.UpdateProfileRequest{Email: strPtr("new@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.EmailValue())
	assert.False(t, got.IsEmailVerified)
}

func TestUserDelete_RevokesTokens(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := NewUserService(users, tokens)
	ctx := context.Background()
	u := users.add(&models.User{Role: models.RoleTraveller})
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.Zero(t, tokens.active(u.ID))

	_, err := svc.Get(ctx, u.ID)
	assert.True(t, errors.Is(err, ErrAccountDeleted))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrAccountDeleted)
}

// --- moderation ---

func TestModeration(t *testing.T) {
	ms := NewModerationService()

	tests := []struct {
		text         string
		allowContact bool
		reason       string
	}{
		{"Lovely stay, the hosts were warm.", false, ""},
		{"This place is a SCAM", false, ReasonLanguage},
		{"book at https://cheap.example", false, ReasonURL},
		{"mail me at host@example.com", false, ReasonContactInfo},
		{"mail me at host@example.com", true, ""},
		{"call +91 98765 43210 now", false, ReasonContactInfo},
		{"sooooooo good!!!!!!", false, ReasonSpam},
		{"GREAT VIEWS AMAZING FOOD HAPPY TRIP", false, ReasonCaps},
		{"", false, ""},
	}
	for _, tt := range tests {
		ok, reason := ms.FilterContent(tt.text, tt.allowContact)
		assert.Equal(t, tt.reason == "", ok, tt.text)
		assert.Equal(t, tt.reason, reason, tt.text)
	}

	err := ms.Check("what a scam", false)
	var rejected *RejectedContentError
	require.ErrorAs(t, err, &rejected)
	assert.ErrorIs(t, err, ErrContentRejected)
	assert.Equal(t, ReasonLanguage, rejected.Reason)
	assert.Equal(t, RejectionMessage(ReasonLanguage), err.Error())
}
