package service

import (
	"context"
	"strings"

	"onboard-pay/internal/modules/signup/client"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
	"onboard-pay/internal/pkg/phone"
	"onboard-pay/internal/pkg/xerrors"
)

// CheckoutConfig 下单配置
type CheckoutConfig struct {
	PriceID                  string
	PublicBaseURL            string
	RequirePhoneVerification bool
}

// CheckoutForm 注册表单（字段已通过请求校验）
type CheckoutForm struct {
	Email    string
	Phone    string
	Password string
}

// CheckoutResult 返回给前端的支付跳转信息
type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PhoneVerifications 手机号验证状态
type PhoneVerifications interface {
	IsPhoneVerified(ctx context.Context, canonical string) (bool, error)
	ClearPhoneVerified(ctx context.Context, canonical string) error
}

// CheckoutService 暂存凭证并创建支付会话
type CheckoutService struct {
	checkouts CheckoutProvider
	vault     *CredentialVault
	phones    *phone.Normalizer
	verified  PhoneVerifications
	cfg       CheckoutConfig
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(checkouts CheckoutProvider, vault *CredentialVault, phones *phone.Normalizer, verified PhoneVerifications, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		checkouts: checkouts,
		vault:     vault,
		phones:    phones,
		verified:  verified,
		cfg:       cfg,
	}
}

// SuccessURL 支付成功回跳地址，{CHECKOUT_SESSION_ID} 由 Stripe 替换
func (s *CheckoutService) SuccessURL() string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL 取消支付回到注册页
func (s *CheckoutService) CancelURL() string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/"
}

// CreateCheckout 创建支付会话
func (s *CheckoutService) CreateCheckout(ctx context.Context, form CheckoutForm) (*CheckoutResult, error) {
	result, err := s.createCheckout(ctx, form)
	if err != nil {
		outcome := "error"
		if appErr, ok := xerrors.As(err); ok && appErr.Code == xerrors.CodePhoneNotVerified {
			outcome = "phone_not_verified"
		}
		metrics.DefaultSignupMetrics.ObserveCheckout(outcome)
		return nil, err
	}
	metrics.DefaultSignupMetrics.ObserveCheckout("ok")
	return result, nil
}

func (s *CheckoutService) createCheckout(ctx context.Context, form CheckoutForm) (*CheckoutResult, error) {
	canonical, appErr := s.phones.Parse(form.Phone)
	if appErr != nil {
		return nil, appErr
	}
	email := strings.TrimSpace(form.Email)

	if s.cfg.RequirePhoneVerification {
		ok, err := s.verified.IsPhoneVerified(ctx, canonical)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, xerrors.FromCode(xerrors.CodePhoneNotVerified).
				WithMetadata("field", phone.Field)
		}
	}

	token, vaultID, err := s.vault.Seal(ctx, Credentials{
		Email:    email,
		Phone:    canonical,
		Password: form.Password,
	})
	if err != nil {
		return nil, err
	}

	sess, err := s.checkouts.CreateCheckoutSession(ctx, client.CheckoutRequest{
		PriceID:       s.cfg.PriceID,
		SuccessURL:    s.SuccessURL(),
		CancelURL:     s.CancelURL(),
		CustomerEmail: email,
		Metadata: map[string]string{
			MetadataEmail:        email,
			MetadataPhone:        canonical,
			MetadataHandoffToken: token,
		},
	})
	if err != nil {
		if discardErr := s.vault.Discard(ctx, vaultID); discardErr != nil {
			log.WarnContext(ctx, "清理暂存凭证失败", log.Any("error", discardErr))
		}
		return nil, err
	}

	if s.cfg.RequirePhoneVerification {
		if err := s.verified.ClearPhoneVerified(ctx, canonical); err != nil {
			log.WarnContext(ctx, "清除手机号验证标记失败", log.Any("error", err))
		}
	}

	log.InfoContext(ctx, "注册支付会话已创建",
		"email", email,
		"checkout_session_id", sess.ID)

	return &CheckoutResult{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}
