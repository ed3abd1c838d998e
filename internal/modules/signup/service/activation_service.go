package service

import (
	"context"
	"strings"
	"time"

	"onboard-pay/internal/pkg/ctxkey"
	"onboard-pay/internal/pkg/i18n"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
	"onboard-pay/internal/pkg/notify"
	"onboard-pay/internal/pkg/trace"
	"onboard-pay/internal/pkg/xerrors"
)

// State 激活页的三种状态
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateSuccess State = "success"
)

// 激活页文案，key 同时是 i18n 的英文原文
const (
	TitleLoading   = "Processing..."
	MessageLoading = "Please wait while we complete your registration."
	TitleError     = "Registration Error"
	TitleSuccess   = "Payment Successful!"
	MessageSuccess = "Thank you for your purchase. We've sent you an email with verification instructions."
	NoticeTitleOK  = "Account created"
	NoticeBodyOK   = "Please check your email for verification instructions."
	NoticeTitleErr = "Error"
)

// DefaultRedirectDelay 成功后跳转登录页的固定延迟
const DefaultRedirectDelay = 3 * time.Second

// Outcome 一次激活的结果
type Outcome struct {
	State         State
	Title         string
	Message       string
	Err           *xerrors.AppError
	RedirectURL   string
	RedirectAfter time.Duration
	IdentityID    string
	Email         string
}

// transition 状态只能从 loading 迁移一次
func (o *Outcome) transition(to State) bool {
	if o.State != StateLoading {
		return false
	}
	o.State = to
	return true
}

// Feedback 请求级别的反馈通道，由调用方提供
type Feedback struct {
	Notifier   Notifier
	Redirector Redirector
}

// ActivatorConfig 激活配置
type ActivatorConfig struct {
	RedirectURL   string
	RedirectDelay time.Duration
}

// Activator 支付完成后的账号激活：校验付款 -> 创建账号 -> 跳转
type Activator struct {
	payments PaymentVerifier
	accounts AccountCreator
	guard    SessionGuard
	events   EventPublisher
	cfg      ActivatorConfig
}

// NewActivator 创建激活器，guard 和 events 可以为 nil
func NewActivator(payments PaymentVerifier, accounts AccountCreator, guard SessionGuard, events EventPublisher, cfg ActivatorConfig) *Activator {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}
	return &Activator{
		payments: payments,
		accounts: accounts,
		guard:    guard,
		events:   events,
		cfg:      cfg,
	}
}

// NewOutcome 初始的 loading 状态
func NewOutcome(ctx context.Context) *Outcome {
	return &Outcome{
		State:   StateLoading,
		Title:   i18n.T(ctx, TitleLoading),
		Message: i18n.T(ctx, MessageLoading),
	}
}

// Activate 对一个支付会话执行一次激活，远程调用按顺序各至多一次
func (a *Activator) Activate(ctx context.Context, sessionID string, fb Feedback) *Outcome {
	start := time.Now()
	out := NewOutcome(ctx)

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		a.fail(ctx, out, fb, xerrors.FromCode(xerrors.CodeMissingSession), start)
		return out
	}
	ctx = ctxkey.WithValue(ctx, ctxkey.CheckoutSessionID, sessionID)

	claimed := false
	if a.guard != nil {
		ok, err := a.guard.Claim(ctx, sessionID)
		if err != nil {
			a.fail(ctx, out, fb, xerrors.Wrap(err, xerrors.CodeCacheError, xerrors.CodeCacheError.Message()), start)
			return out
		}
		if !ok {
			a.fail(ctx, out, fb, xerrors.FromCode(xerrors.CodeSessionAlreadyActivated).WithSession(sessionID), start)
			return out
		}
		claimed = true
	}

	release := func() {
		if !claimed {
			return
		}
		if err := a.guard.Release(ctx, sessionID); err != nil {
			log.WarnContext(ctx, "释放支付会话占用失败", log.Any("error", err))
		}
	}

	payment, err := a.payments.VerifyPayment(ctx, sessionID)
	if err != nil {
		release()
		a.fail(ctx, out, fb, xerrors.Wrap(err, xerrors.CodePaymentVerificationFailed,
			xerrors.CodePaymentVerificationFailed.Message()), start)
		return out
	}
	if !payment.complete() {
		release()
		a.fail(ctx, out, fb, xerrors.FromCode(xerrors.CodePaymentVerificationFailed).
			WithService("activator", "VerifyPayment").
			WithSession(sessionID), start)
		return out
	}
	if payment.SessionID == "" {
		payment.SessionID = sessionID
	}

	account, err := a.accounts.CreateAccount(ctx, AccountRequest{
		Email:           payment.Email,
		Password:        payment.Password,
		Phone:           payment.Phone,
		EmailRedirectTo: a.cfg.RedirectURL,
		Data: map[string]interface{}{
			"payment_verified": true,
		},
	})
	if err != nil {
		release()
		a.fail(ctx, out, fb, xerrors.Wrap(err, xerrors.CodeAccountCreationFailed,
			xerrors.CodeAccountCreationFailed.Message()), start)
		return out
	}
	if account == nil || account.ID == "" {
		release()
		a.fail(ctx, out, fb, xerrors.FromCode(xerrors.CodeAccountCreationFailed).
			WithService("activator", "CreateAccount").
			WithSession(sessionID), start)
		return out
	}

	a.succeed(ctx, out, fb, payment, account, start)
	return out
}

func (a *Activator) fail(ctx context.Context, out *Outcome, fb Feedback, appErr *xerrors.AppError, start time.Time) {
	if !out.transition(StateError) {
		return
	}

	msg := i18n.LocalizeAppError(appErr, i18n.GetLanguage(ctx))
	out.Title = i18n.T(ctx, TitleError)
	out.Message = msg
	out.Err = appErr

	log.LogAppError(ctx, "账号激活失败", appErr)
	if fb.Notifier != nil {
		fb.Notifier.Notify(ctx, notify.Notification{
			Title:       i18n.T(ctx, NoticeTitleErr),
			Description: msg,
			Severity:    notify.SeverityError,
			TraceID:     trace.GetTraceID(ctx),
			SentAt:      time.Now(),
		})
	}
	metrics.DefaultSignupMetrics.ObserveActivation(string(StateError), time.Since(start))
}

func (a *Activator) succeed(ctx context.Context, out *Outcome, fb Feedback, payment *VerifiedPayment, account *CreatedAccount, start time.Time) {
	if !out.transition(StateSuccess) {
		return
	}

	out.Title = i18n.T(ctx, TitleSuccess)
	out.Message = i18n.T(ctx, MessageSuccess)
	out.IdentityID = account.ID
	out.Email = account.Email
	out.RedirectURL = a.cfg.RedirectURL
	out.RedirectAfter = a.cfg.RedirectDelay

	if err := a.payments.ConsumeCredentials(ctx, payment); err != nil {
		// 条目会随 TTL 过期
		log.WarnContext(ctx, "销毁暂存凭证失败", log.Any("error", err))
	}

	if fb.Notifier != nil {
		fb.Notifier.Notify(ctx, notify.Notification{
			Title:       i18n.T(ctx, NoticeTitleOK),
			Description: i18n.T(ctx, NoticeBodyOK),
			Severity:    notify.SeveritySuccess,
			TraceID:     trace.GetTraceID(ctx),
			SentAt:      time.Now(),
		})
	}

	if a.events != nil {
		event := map[string]string{
			"identity_id": account.ID,
			"email":       account.Email,
			"session_id":  payment.SessionID,
		}
		if err := a.events.Publish(ctx, notify.SubjectAccountActivated, event); err != nil {
			log.WarnContext(ctx, "发布激活事件失败", log.Any("error", err))
		}
	}

	if fb.Redirector != nil {
		fb.Redirector.ScheduleRedirect(out.RedirectURL, out.RedirectAfter)
	}

	log.LogBusinessEvent(ctx, "account_activated", "identity", account.ID, map[string]interface{}{
		"email": account.Email,
	})
	metrics.DefaultSignupMetrics.ObserveActivation(string(StateSuccess), time.Since(start))
}
