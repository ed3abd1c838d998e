package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"onboard-pay/internal/modules/signup/service"
	"onboard-pay/internal/pkg/notify"
	"onboard-pay/internal/pkg/phone"
	"onboard-pay/internal/pkg/response"
	"onboard-pay/internal/pkg/validator"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOTP struct {
	sentTo   string
	verified string
	err      error
}

func (f *fakeOTP) SendOTP(_ context.Context, rawPhone string) (*service.OTPTicket, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sentTo = rawPhone
	return &service.OTPTicket{Phone: "+15551234567", RequestID: "req-1", ExpiresIn: 300, ResendAfter: 60}, nil
}

func (f *fakeOTP) VerifyOTP(_ context.Context, rawPhone, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.verified = rawPhone
	return "+15551234567", nil
}

type fakeCheckout struct {
	form service.CheckoutForm
	err  error
}

func (f *fakeCheckout) CreateCheckout(_ context.Context, form service.CheckoutForm) (*service.CheckoutResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.form = form
	return &service.CheckoutResult{SessionID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

type fakePayments struct {
	payment *service.VerifiedPayment
	err     error
}

func (f *fakePayments) VerifyPayment(context.Context, string) (*service.VerifiedPayment, error) {
	return f.payment, f.err
}

// scriptedActivator 按预设结果驱动 Feedback
type scriptedActivator struct {
	sessionID string
	fail      *xerrors.AppError
}

func (a *scriptedActivator) Activate(ctx context.Context, sessionID string, fb service.Feedback) *service.Outcome {
	a.sessionID = sessionID
	out := service.NewOutcome(ctx)
	if a.fail != nil {
		out.State = service.StateError
		out.Title = service.TitleError
		out.Message = a.fail.Message
		out.Err = a.fail
		fb.Notifier.Notify(ctx, notify.Notification{Title: service.NoticeTitleErr, Description: a.fail.Message, Severity: notify.SeverityError})
		return out
	}
	out.State = service.StateSuccess
	out.Title = service.TitleSuccess
	out.Message = service.MessageSuccess
	fb.Notifier.Notify(ctx, notify.Notification{Title: service.NoticeTitleOK, Description: service.NoticeBodyOK, Severity: notify.SeveritySuccess})
	fb.Redirector.ScheduleRedirect("https://app.example.com", 3*time.Second)
	fb.Redirector.ScheduleRedirect("https://ignored.example.com", time.Second)
	return out
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New(phone.Default())
	return e
}

func doJSON(t *testing.T, e *echo.Echo, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestSendOTP(t *testing.T) {
	e := newTestEcho()
	otp := &fakeOTP{}
	h := NewSignupHandler(otp, &fakeCheckout{}, response.DefaultResponseHandler())

	rec, body := doJSON(t, e, h.SendOTP, `{"phone":"(555) 123-4567"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(xerrors.CodeSuccess), body["code"])
	assert.Equal(t, "(555) 123-4567", otp.sentTo)
}

func TestSendOTP_InvalidPhone(t *testing.T) {
	e := newTestEcho()
	otp := &fakeOTP{}
	h := NewSignupHandler(otp, &fakeCheckout{}, response.DefaultResponseHandler())

	rec, body := doJSON(t, e, h.SendOTP, `{"phone":"555-CALL-NOW"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(xerrors.CodeInvalidParams), body["code"])
	assert.Empty(t, otp.sentTo)
}

func TestSendOTP_Cooldown(t *testing.T) {
	e := newTestEcho()
	h := NewSignupHandler(&fakeOTP{err: xerrors.FromCode(xerrors.CodeOTPCooldown)}, &fakeCheckout{}, response.DefaultResponseHandler())

	rec, _ := doJSON(t, e, h.SendOTP, `{"phone":"+15551234567"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestVerifyOTP(t *testing.T) {
	e := newTestEcho()
	h := NewSignupHandler(&fakeOTP{}, &fakeCheckout{}, response.DefaultResponseHandler())

	rec, body := doJSON(t, e, h.VerifyOTP, `{"phone":"+1 555 123 4567","code":"123456"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "+15551234567", data["phone"])
	assert.Equal(t, true, data["verified"])

	rec, _ = doJSON(t, e, h.VerifyOTP, `{"phone":"+15551234567","code":"12ab"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCheckout(t *testing.T) {
	e := newTestEcho()
	checkout := &fakeCheckout{}
	h := NewSignupHandler(&fakeOTP{}, checkout, response.DefaultResponseHandler())

	rec, body := doJSON(t, e, h.CreateCheckout,
		`{"email":"jane@example.com","phone":"+15551234567","password":"s3cret-pass","confirm_password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "cs_test_1", data["session_id"])
	assert.Equal(t, "jane@example.com", checkout.form.Email)
	assert.Equal(t, "s3cret-pass", checkout.form.Password)
}

func TestCreateCheckout_FieldErrors(t *testing.T) {
	e := newTestEcho()
	checkout := &fakeCheckout{}
	h := NewSignupHandler(&fakeOTP{}, checkout, response.DefaultResponseHandler())

	rec, body := doJSON(t, e, h.CreateCheckout,
		`{"email":"jane@example.com","phone":"+15551234567","password":"s3cret-pass","confirm_password":"other-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Passwords don't match", body["message"])

	data := body["data"].(map[string]interface{})
	fields := data["fields"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "confirm_password", fields[0].(map[string]interface{})["field"])
	assert.Empty(t, checkout.form.Email)
}

func TestCreateCheckout_MalformedBody(t *testing.T) {
	e := newTestEcho()
	h := NewSignupHandler(&fakeOTP{}, &fakeCheckout{}, response.DefaultResponseHandler())

	rec, body := doJSON(t, e, h.CreateCheckout, `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(xerrors.CodeInvalidRequest), body["code"])
}

func TestVerifyPaymentHandler(t *testing.T) {
	e := newTestEcho()

	t.Run("paid", func(t *testing.T) {
		h := NewPaymentHandler(&fakePayments{payment: &service.VerifiedPayment{
			Success: true, Email: "jane@example.com", Password: "s3cret-pass",
		}}, response.DefaultResponseHandler())

		rec, body := doJSON(t, e, h.VerifyPayment, `{"sessionId":"cs_test_1"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, true, data["success"])
		assert.Equal(t, "jane@example.com", data["email"])
		assert.NotContains(t, rec.Body.String(), "s3cret-pass")
	})

	t.Run("not paid", func(t *testing.T) {
		h := NewPaymentHandler(&fakePayments{err: xerrors.FromCode(xerrors.CodePaymentNotCompleted)}, response.DefaultResponseHandler())
		rec, _ := doJSON(t, e, h.VerifyPayment, `{"sessionId":"cs_test_1"}`)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("missing session id", func(t *testing.T) {
		h := NewPaymentHandler(&fakePayments{}, response.DefaultResponseHandler())
		rec, _ := doJSON(t, e, h.VerifyPayment, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func doActivation(t *testing.T, h echo.HandlerFunc, target, accept string) *httptest.ResponseRecorder {
	t.Helper()
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestActivation_JSONSuccess(t *testing.T) {
	activator := &scriptedActivator{}
	sink := &recordingSink{}
	h := NewActivationHandler(activator, sink, response.DefaultResponseHandler())

	rec := doActivation(t, h.GetActivation, "/api/v1/activation?session_id=cs_test_1", echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cs_test_1", activator.sessionID)
	assert.Equal(t, "3; url=https://app.example.com", rec.Header().Get("Refresh"))
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))

	var body response.ResponseResult[ActivationView]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, xerrors.CodeSuccess.ToInt(), body.Code)
	assert.Equal(t, service.StateSuccess, body.Data.State)
	assert.Equal(t, "https://app.example.com", body.Data.RedirectURL)
	assert.Equal(t, int64(3000), body.Data.RedirectAfterMs)
	require.Len(t, body.Data.Notifications, 1)
	assert.Equal(t, notify.SeveritySuccess, body.Data.Notifications[0].Severity)
	assert.Len(t, sink.items, 1)
}

func TestActivation_JSONError(t *testing.T) {
	activator := &scriptedActivator{fail: xerrors.FromCode(xerrors.CodePaymentNotCompleted)}
	h := NewActivationHandler(activator, nil, response.DefaultResponseHandler())

	rec := doActivation(t, h.GetActivation, "/api/v1/activation?session_id=cs_test_1", "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Empty(t, rec.Header().Get("Refresh"))

	var body response.ResponseResult[ActivationView]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, xerrors.CodePaymentNotCompleted.ToInt(), body.Code)
	require.NotNil(t, body.Data)
	assert.Equal(t, service.StateError, body.Data.State)
	assert.Empty(t, body.Data.RedirectURL)
	require.Len(t, body.Data.Notifications, 1)
	assert.Equal(t, notify.SeverityError, body.Data.Notifications[0].Severity)
}

func TestActivation_HTMLSuccess(t *testing.T) {
	h := NewActivationHandler(&scriptedActivator{}, nil, response.DefaultResponseHandler())

	rec := doActivation(t, h.SuccessPage, "/success?session_id=cs_test_1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	page := rec.Body.String()
	assert.Contains(t, page, "Payment Successful!")
	assert.Contains(t, page, hintSuccess)
	assert.Contains(t, page, labelLogin)
	assert.Contains(t, page, "https://app.example.com")
}

func TestActivation_HTMLErrorViaNegotiation(t *testing.T) {
	activator := &scriptedActivator{fail: xerrors.FromCode(xerrors.CodeMissingSession)}
	h := NewActivationHandler(activator, nil, response.DefaultResponseHandler())

	rec := doActivation(t, h.GetActivation, "/api/v1/activation", "text/html,application/xhtml+xml,application/json;q=0.9")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Registration Error")
	assert.Contains(t, page, labelRetry)
	assert.NotContains(t, page, hintSuccess)
}

func TestWantsHTML(t *testing.T) {
	cases := map[string]bool{
		"":                                 false,
		"application/json":                 false,
		"text/html":                        true,
		"application/json, text/html":      false,
		"text/html, application/json;q=.9": true,
		"*/*":                              false,
	}
	for accept, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAccept, accept)
		assert.Equal(t, want, wantsHTML(req), accept)
	}
}

type recordingSink struct {
	items []notify.Notification
}

func (s *recordingSink) Notify(_ context.Context, n notify.Notification) {
	s.items = append(s.items, n)
}
