package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"onboard-pay/internal/modules/signup/client"
	"onboard-pay/internal/pkg/notify"
	"onboard-pay/internal/pkg/redis"

	ory "github.com/ory/kratos-client-go"
)

// memStore 内存版 KeyValueStore，不处理过期
type memStore struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration
	failAll error
}

func newMemStore() *memStore {
	return &memStore{
		strings: map[string]string{},
		hashes:  map[string]map[string]string{},
		ttls:    map[string]time.Duration{},
	}
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	m.strings[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	if _, ok := m.strings[key]; ok {
		return false, nil
	}
	m.strings[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memStore) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return "", m.failAll
	}
	v, ok := m.strings[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	_, s := m.strings[key]
	_, h := m.hashes[key]
	return s || h, nil
}

func (m *memStore) DeleteKey(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	for _, k := range keys {
		delete(m.strings, k)
		delete(m.hashes, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *memStore) HSetWithTTL(_ context.Context, key string, ttl time.Duration, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = fmt.Sprint(v)
	}
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) HGetAllMap(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	h, ok := m.hashes[key]
	if !ok || len(h) == 0 {
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
	if m.failAll != nil {
		return 0, m.failAll
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	n, _ := strconv.ParseInt(h[field], 10, 64)
	n++
	h[field] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memStore) has(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}

// fakeCheckouts 内存版支付服务商
type fakeCheckouts struct {
	sessions  map[string]*client.CheckoutSession
	created   []client.CheckoutRequest
	createErr error
	getErr    error
	getCalls  int
}

func newFakeCheckouts() *fakeCheckouts {
	return &fakeCheckouts{sessions: map[string]*client.CheckoutSession{}}
}

func (f *fakeCheckouts) CreateCheckoutSession(_ context.Context, req client.CheckoutRequest) (*client.CheckoutSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	id := fmt.Sprintf("cs_test_%d", len(f.created))
	sess := &client.CheckoutSession{
		ID:            id,
		URL:           "https://checkout.stripe.com/c/pay/" + id,
		Status:        "open",
		PaymentStatus: "unpaid",
		CustomerEmail: req.CustomerEmail,
		Metadata:      req.Metadata,
	}
	f.sessions[id] = sess
	return sess, nil
}

func (f *fakeCheckouts) GetCheckoutSession(_ context.Context, sessionID string) (*client.CheckoutSession, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return sess, nil
}

func (f *fakeCheckouts) markPaid(id string) {
	f.sessions[id].Status = "complete"
	f.sessions[id].PaymentStatus = "paid"
}

// fakeIdentities 内存版 Kratos
type fakeIdentities struct {
	created    []client.CreateIdentityRequest
	id         string
	createErr  error
	verifyErr  error
	verifySent []string
}

func (f *fakeIdentities) CreateIdentity(_ context.Context, req client.CreateIdentityRequest) (*ory.Identity, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &ory.Identity{Id: f.id}, nil
}

func (f *fakeIdentities) SendVerificationEmail(_ context.Context, email string) error {
	f.verifySent = append(f.verifySent, email)
	return f.verifyErr
}

// fakeVerifier 直接返回预设结果的 PaymentVerifier
type fakeVerifier struct {
	result   *VerifiedPayment
	err      error
	calls    int
	consumed int
}

func (f *fakeVerifier) VerifyPayment(context.Context, string) (*VerifiedPayment, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeVerifier) ConsumeCredentials(context.Context, *VerifiedPayment) error {
	f.consumed++
	return nil
}

// fakeAccounts 预设结果的 AccountCreator
type fakeAccounts struct {
	account *CreatedAccount
	err     error
	calls   []AccountRequest
}

func (f *fakeAccounts) CreateAccount(_ context.Context, req AccountRequest) (*CreatedAccount, error) {
	f.calls = append(f.calls, req)
	return f.account, f.err
}

type recordingNotifier struct {
	items []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.items = append(r.items, n)
}

type redirectCall struct {
	url   string
	delay time.Duration
}

type recordingRedirector struct {
	calls []redirectCall
}

func (r *recordingRedirector) ScheduleRedirect(url string, delay time.Duration) {
	r.calls = append(r.calls, redirectCall{url: url, delay: delay})
}

type publishedEvent struct {
	subject string
	payload interface{}
}

type recordingPublisher struct {
	events       []publishedEvent
	err          error
	unconfigured bool
}

func (r *recordingPublisher) Configured() bool { return !r.unconfigured }

func (r *recordingPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, publishedEvent{subject: subject, payload: payload})
	return nil
}
