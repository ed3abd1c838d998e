package client

import (
	"context"
	"errors"
	"net/http"

	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/xerrors"

	stripe "github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
)

// CheckoutSession 支付会话中注册流程关心的字段
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	CustomerEmail string
	Metadata      map[string]string
}

// Paid 会话是否已完成付款
func (s *CheckoutSession) Paid() bool {
	return s != nil && s.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// CheckoutRequest 创建支付会话的参数
type CheckoutRequest struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// StripeClient 封装 Stripe Checkout API
type StripeClient struct {
	api *stripeclient.API
}

// NewStripeClient 创建 Stripe 客户端
func NewStripeClient(secretKey string) *StripeClient {
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

// CreateCheckoutSession 创建一次性付款的 checkout 会话
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, translateStripeError("CreateCheckoutSession", err)
	}

	log.InfoContext(ctx, "Stripe checkout 会话已创建", "checkout_session_id", sess.ID)
	return toCheckoutSession(sess), nil
}

// GetCheckoutSession 查询 checkout 会话
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, translateStripeError("GetCheckoutSession", err).
			WithMetadata("checkout_session_id", sessionID)
	}
	return toCheckoutSession(sess), nil
}

func toCheckoutSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
		Metadata:      sess.Metadata,
	}
	if out.CustomerEmail == "" && sess.CustomerDetails != nil {
		out.CustomerEmail = sess.CustomerDetails.Email
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

// translateStripeError 把 Stripe 错误转成 AppError
// 会话不存在属于用户侧问题（伪造或过期的 session_id），其余按外部服务错误处理
func translateStripeError(operation string, err error) *xerrors.AppError {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return xerrors.NewWithError(xerrors.CodePaymentVerificationFailed,
				xerrors.CodePaymentVerificationFailed.Message(), err).
				WithService("stripe_client", operation)
		}
		return xerrors.NewPaymentProviderError(operation, err).
			WithService("stripe_client", operation).
			WithMetadata("stripe_code", string(stripeErr.Code)).
			WithMetadata("status_code", stripeErr.HTTPStatusCode)
	}
	return xerrors.NewPaymentProviderError(operation, err).
		WithService("stripe_client", operation)
}
