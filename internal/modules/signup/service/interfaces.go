package service

import (
	"context"
	"time"

	"onboard-pay/internal/modules/signup/client"
	"onboard-pay/internal/pkg/notify"

	ory "github.com/ory/kratos-client-go"
)

// KeyValueStore 注册流程用到的 Redis 操作子集，*redis.Client 实现了它
type KeyValueStore interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	GetString(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	DeleteKey(ctx context.Context, keys ...string) error
	HSetWithTTL(ctx context.Context, key string, ttl time.Duration, fields map[string]interface{}) error
	HGetAllMap(ctx context.Context, key string) (map[string]string, error)
	HIncr(ctx context.Context, key, field string) (int64, error)
}

// CheckoutProvider 支付服务商（Stripe Checkout）
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req client.CheckoutRequest) (*client.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*client.CheckoutSession, error)
}

// IdentityProvider 认证服务（Kratos）
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, req client.CreateIdentityRequest) (*ory.Identity, error)
	SendVerificationEmail(ctx context.Context, email string) error
}

// PaymentVerifier 付款校验协作方
type PaymentVerifier interface {
	// VerifyPayment 校验付款并取回注册凭证，不会消费凭证
	VerifyPayment(ctx context.Context, sessionID string) (*VerifiedPayment, error)
	// ConsumeCredentials 账号创建成功后销毁暂存的凭证
	ConsumeCredentials(ctx context.Context, payment *VerifiedPayment) error
}

// AccountCreator 账号创建协作方
type AccountCreator interface {
	CreateAccount(ctx context.Context, req AccountRequest) (*CreatedAccount, error)
}

// Notifier 通知通道
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

// Redirector 一次性的延迟跳转
type Redirector interface {
	ScheduleRedirect(url string, delay time.Duration)
}

// SessionGuard 支付会话防重放
type SessionGuard interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// EventPublisher 业务事件发布
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// SMSPublisher 短信出口；未配置时验证码无法送达
type SMSPublisher interface {
	EventPublisher
	Configured() bool
}

// VerifiedPayment 付款校验结果
type VerifiedPayment struct {
	Success   bool   `json:"success"`
	SessionID string `json:"-"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"-"`
	Password  string `json:"-"`
	VaultID   string `json:"-"`
}

// complete 成功且凭证齐全
func (p *VerifiedPayment) complete() bool {
	return p != nil && p.Success && p.Email != "" && p.Password != ""
}

// AccountRequest 创建账号请求
type AccountRequest struct {
	Email    string
	Password string
	Phone    string
	// EmailRedirectTo 确认邮件完成后的落地页
	EmailRedirectTo string
	Data            map[string]interface{}
}

// CreatedAccount 创建结果
type CreatedAccount struct {
	ID    string
	Email string
}
