package service

import (
	"context"
	"strings"

	"onboard-pay/internal/pkg/ctxkey"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/xerrors"
)

// 支付 metadata 字段
const (
	MetadataEmail        = "email"
	MetadataPhone        = "phone"
	MetadataHandoffToken = "handoff_token"
)

// PaymentService 付款校验：确认 checkout 已付款并取回暂存凭证
type PaymentService struct {
	checkouts CheckoutProvider
	vault     *CredentialVault
}

// NewPaymentService 创建付款校验服务
func NewPaymentService(checkouts CheckoutProvider, vault *CredentialVault) *PaymentService {
	return &PaymentService{
		checkouts: checkouts,
		vault:     vault,
	}
}

// VerifyPayment 校验付款状态，成功时返回邮箱和解密后的密码
func (s *PaymentService) VerifyPayment(ctx context.Context, sessionID string) (*VerifiedPayment, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, xerrors.FromCode(xerrors.CodeMissingSession)
	}
	ctx = ctxkey.WithValue(ctx, ctxkey.CheckoutSessionID, sessionID)

	sess, err := s.checkouts.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.Paid() {
		log.InfoContext(ctx, "checkout 尚未付款",
			"status", sess.Status,
			"payment_status", sess.PaymentStatus)
		return nil, xerrors.FromCode(xerrors.CodePaymentNotCompleted).
			WithService("payment_service", "VerifyPayment").
			WithSession(sessionID)
	}

	token := sess.Metadata[MetadataHandoffToken]
	email := sess.Metadata[MetadataEmail]
	if token == "" || email == "" {
		return nil, xerrors.New(xerrors.CodeCredentialsUnavailable, "Missing user credentials in session metadata").
			WithService("payment_service", "VerifyPayment").
			WithSession(sessionID)
	}

	creds, vaultID, err := s.vault.Open(ctx, token)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(creds.Email, email) {
		return nil, xerrors.New(xerrors.CodeInvalidToken, "handoff token does not match session metadata").
			WithService("payment_service", "VerifyPayment").
			WithSession(sessionID)
	}

	phone := creds.Phone
	if phone == "" {
		phone = sess.Metadata[MetadataPhone]
	}

	log.InfoContext(ctx, "付款校验通过", "email", creds.Email)

	return &VerifiedPayment{
		Success:   true,
		SessionID: sessionID,
		Email:     creds.Email,
		Phone:     phone,
		Password:  creds.Password,
		VaultID:   vaultID,
	}, nil
}

// ConsumeCredentials 销毁暂存凭证
func (s *PaymentService) ConsumeCredentials(ctx context.Context, payment *VerifiedPayment) error {
	if payment == nil {
		return nil
	}
	return s.vault.Discard(ctx, payment.VaultID)
}
