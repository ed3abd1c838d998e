package signup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"onboard-pay/internal/modules/signup/client"
	"onboard-pay/internal/modules/signup/tasks"
	"onboard-pay/internal/pkg/config"
	"onboard-pay/internal/pkg/redis"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
	ory "github.com/ory/kratos-client-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore 内存版 Redis，只实现模块用到的命令
type memStore struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{strings: map[string]string{}, hashes: map[string]map[string]string{}}
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = fmt.Sprint(value)
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.strings[key]; ok {
		return false, nil
	}
	m.strings[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memStore) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.strings[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s := m.strings[key]
	_, h := m.hashes[key]
	return s || h, nil
}

func (m *memStore) DeleteKey(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.strings, k)
		delete(m.hashes, k)
	}
	return nil
}

func (m *memStore) HSetWithTTL(_ context.Context, key string, _ time.Duration, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = fmt.Sprint(v)
	}
	return nil
}

func (m *memStore) HGetAllMap(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) HIncr(_ context.Context, key, field string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	n, _ := strconv.ParseInt(h[field], 10, 64)
	n++
	h[field] = strconv.FormatInt(n, 10)
	return n, nil
}

type stubCheckouts struct {
	sessions map[string]*client.CheckoutSession
}

func (s *stubCheckouts) CreateCheckoutSession(_ context.Context, req client.CheckoutRequest) (*client.CheckoutSession, error) {
	id := fmt.Sprintf("cs_test_%d", len(s.sessions)+1)
	sess := &client.CheckoutSession{
		ID:            id,
		URL:           "https://checkout.stripe.com/c/pay/" + id,
		PaymentStatus: "unpaid",
		CustomerEmail: req.CustomerEmail,
		Metadata:      req.Metadata,
	}
	s.sessions[id] = sess
	return sess, nil
}

func (s *stubCheckouts) GetCheckoutSession(_ context.Context, id string) (*client.CheckoutSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return sess, nil
}

type stubIdentities struct {
	created []client.CreateIdentityRequest
}

func (s *stubIdentities) CreateIdentity(_ context.Context, req client.CreateIdentityRequest) (*ory.Identity, error) {
	s.created = append(s.created, req)
	return &ory.Identity{Id: "identity-1"}, nil
}

func (s *stubIdentities) SendVerificationEmail(context.Context, string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:                ":0",
		Environment:             "test",
		PublicBaseURL:           "https://pay.example.com",
		SignupRedirectURL:       "https://app.example.com",
		RedirectDelay:           3 * time.Second,
		HandoffSecret:           "0123456789abcdef0123456789abcdef",
		HandoffTTL:              time.Hour,
		OTPTTL:                  5 * time.Minute,
		OTPCooldown:             time.Minute,
		OTPMaxAttempts:          5,
		StripePriceID:           "price_test",
		PhoneDefaultCountryCode: "1",
		PhoneSubscriberLength:   10,
		PhoneMinDigits:          11,
		PhoneMaxDigits:          15,
	}
}

func newTestModule(t *testing.T) (*SignupModule, *stubCheckouts, *stubIdentities) {
	t.Helper()
	checkouts := &stubCheckouts{sessions: map[string]*client.CheckoutSession{}}
	identities := &stubIdentities{}

	m, err := NewSignupModule(testConfig(), Dependencies{
		Store:      newMemStore(),
		Identities: identities,
		Checkouts:  checkouts,
		Probes: map[string]tasks.Probe{
			"redis": func(context.Context) error { return nil },
		},
	})
	require.NoError(t, err)
	return m, checkouts, identities
}

func TestNewSignupModule_RequiresDependencies(t *testing.T) {
	_, err := NewSignupModule(testConfig(), Dependencies{})
	assert.Error(t, err)
}

func TestSignupModule_Routes(t *testing.T) {
	m, _, _ := newTestModule(t)

	registered := map[string]bool{}
	for _, r := range m.Echo().Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/signup/otp",
		"POST /api/v1/signup/otp/verify",
		"POST /api/v1/signup/checkout",
		"POST /api/v1/payments/verify",
		"GET /api/v1/activation",
		"GET /success",
		"GET /health",
		"GET /metrics",
		"GET /swagger/*",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestSignupModule_CheckoutThenActivate(t *testing.T) {
	m, checkouts, identities := newTestModule(t)
	e := m.Echo()

	// testConfig 未要求手机验证，直接下单
	body := `{"email":"jane@example.com","phone":"(555) 123-4567","password":"s3cret-pass","confirm_password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup/checkout", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	sessionID := created.Data.SessionID
	require.NotEmpty(t, sessionID)
	assert.NotContains(t, fmt.Sprint(checkouts.sessions[sessionID].Metadata), "s3cret-pass")

	// 未付款
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activation?session_id="+sessionID, nil))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	checkouts.sessions[sessionID].PaymentStatus = "paid"

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activation?session_id="+sessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3; url=https://app.example.com", rec.Header().Get("Refresh"))
	require.Len(t, identities.created, 1)
	assert.Equal(t, "jane@example.com", identities.created[0].Email)
	assert.Equal(t, "s3cret-pass", identities.created[0].Password)
	assert.Equal(t, "+15551234567", identities.created[0].Phone)

	// 同一个会话不能再次激活
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activation?session_id="+sessionID, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, identities.created, 1)
}

func TestSignupModule_OTPRateLimitUsesEnvelope(t *testing.T) {
	m, _, _ := newTestModule(t)
	e := m.Echo()

	// 突发容量为 otpRateLimit，超出后返回 429 统一响应
	var limited *httptest.ResponseRecorder
	for i := 0; i < otpRateLimit+3 && limited == nil; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/signup/otp", strings.NewReader(`{"phone":"(555) 123-4567"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = rec
		}
	}
	require.NotNil(t, limited)

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, int(xerrors.CodeRateLimitExceeded), body.Code)
}

func TestSignupModule_Health(t *testing.T) {
	m, _, _ := newTestModule(t)
	e := m.Echo()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	m.healthTask.RunOnce(context.Background())
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap tasks.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.Healthy)
	require.Len(t, snap.Dependencies, 1)
	assert.Equal(t, "redis", snap.Dependencies[0].Name)
}
