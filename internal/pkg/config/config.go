// File: internal/pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 注册支付服务的全部运行配置
type Config struct {
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// NATSURL 为空时通知只进入请求内收集器
	NATSURL string `mapstructure:"NATS_URL"`

	KratosAdminURL  string `mapstructure:"KRATOS_ADMIN_URL"`
	KratosPublicURL string `mapstructure:"KRATOS_PUBLIC_URL"`
	KratosSchemaID  string `mapstructure:"KRATOS_SCHEMA_ID"`

	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	StripePriceID   string `mapstructure:"STRIPE_PRICE_ID"`

	// PublicBaseURL 支付回跳地址的前缀
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	// SignupRedirectURL 激活成功后的跳转地址，同时用作验证邮件的落地页
	SignupRedirectURL string        `mapstructure:"SIGNUP_REDIRECT_URL"`
	RedirectDelay     time.Duration `mapstructure:"REDIRECT_DELAY"`

	HandoffSecret string        `mapstructure:"HANDOFF_SECRET"`
	HandoffTTL    time.Duration `mapstructure:"HANDOFF_TTL"`

	OTPTTL                   time.Duration `mapstructure:"OTP_TTL"`
	OTPCooldown              time.Duration `mapstructure:"OTP_COOLDOWN"`
	OTPMaxAttempts           int           `mapstructure:"OTP_MAX_ATTEMPTS"`
	RequirePhoneVerification bool          `mapstructure:"REQUIRE_PHONE_VERIFICATION"`

	PhoneDefaultCountryCode string `mapstructure:"PHONE_DEFAULT_COUNTRY_CODE"`
	PhoneSubscriberLength   int    `mapstructure:"PHONE_SUBSCRIBER_LENGTH"`
	PhoneMinDigits          int    `mapstructure:"PHONE_MIN_DIGITS"`
	PhoneMaxDigits          int    `mapstructure:"PHONE_MAX_DIGITS"`

	HealthCheckSpec string `mapstructure:"HEALTH_CHECK_SPEC"`
}

var defaults = map[string]any{
	"HTTP_ADDR":                  ":8080",
	"ENVIRONMENT":                "development",
	"LOG_LEVEL":                  "info",
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"NATS_URL":                   "",
	"KRATOS_ADMIN_URL":           "http://localhost:4434",
	"KRATOS_PUBLIC_URL":          "http://localhost:4433",
	"KRATOS_SCHEMA_ID":           "default",
	"STRIPE_SECRET_KEY":          "",
	"STRIPE_PRICE_ID":            "",
	"PUBLIC_BASE_URL":            "http://localhost:8080",
	"SIGNUP_REDIRECT_URL":        "https://app.cryptotrack.org",
	"REDIRECT_DELAY":             3 * time.Second,
	"HANDOFF_SECRET":             "",
	"HANDOFF_TTL":                24 * time.Hour,
	"OTP_TTL":                    5 * time.Minute,
	"OTP_COOLDOWN":               60 * time.Second,
	"OTP_MAX_ATTEMPTS":           5,
	"REQUIRE_PHONE_VERIFICATION": true,
	"PHONE_DEFAULT_COUNTRY_CODE": "1",
	"PHONE_SUBSCRIBER_LENGTH":    10,
	"PHONE_MIN_DIGITS":           11,
	"PHONE_MAX_DIGITS":           15,
	"HEALTH_CHECK_SPEC":          "@every 30s",
}

// Load 读取 .env（向上查找，不存在则忽略），再由环境变量覆盖并校验
// 优先级：环境变量 > .env > 默认值
func Load() (*Config, error) {
	LoadDotEnvUp(0)
	return loadFrom(viper.New())
}

func loadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验必填项和取值范围
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.HandoffSecret == "" {
		return errors.New("config: HANDOFF_SECRET must be set")
	}
	if len(c.HandoffSecret) < 16 {
		return errors.New("config: HANDOFF_SECRET must be at least 16 characters")
	}
	if c.IsProduction() && (c.StripeSecretKey == "" || c.StripePriceID == "") {
		return errors.New("config: STRIPE_SECRET_KEY and STRIPE_PRICE_ID must be set in production")
	}
	for key, raw := range map[string]string{
		"PUBLIC_BASE_URL":     c.PublicBaseURL,
		"SIGNUP_REDIRECT_URL": c.SignupRedirectURL,
		"KRATOS_ADMIN_URL":    c.KratosAdminURL,
		"KRATOS_PUBLIC_URL":   c.KratosPublicURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: %s must be an absolute URL", key)
		}
	}
	if c.RequirePhoneVerification && c.NATSURL == "" {
		return errors.New("config: REQUIRE_PHONE_VERIFICATION needs NATS_URL to deliver verification codes")
	}
	if c.RedirectDelay < 0 {
		return errors.New("config: REDIRECT_DELAY must not be negative")
	}
	if c.HandoffTTL <= 0 || c.OTPTTL <= 0 {
		return errors.New("config: HANDOFF_TTL and OTP_TTL must be positive")
	}
	if c.OTPMaxAttempts <= 0 {
		return errors.New("config: OTP_MAX_ATTEMPTS must be positive")
	}
	if c.PhoneSubscriberLength <= 0 {
		return errors.New("config: PHONE_SUBSCRIBER_LENGTH must be positive")
	}
	if c.PhoneMinDigits <= 0 || c.PhoneMaxDigits < c.PhoneMinDigits || c.PhoneMaxDigits > 15 {
		return errors.New("config: PHONE_MIN_DIGITS/PHONE_MAX_DIGITS out of range")
	}
	return nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LogFields 返回用于启动日志的配置快照（敏感项已脱敏）
func (c *Config) LogFields() map[string]any {
	return SanitizeConfigForLog(map[string]any{
		"http_addr":                  c.HTTPAddr,
		"environment":                c.Environment,
		"log_level":                  c.LogLevel,
		"redis_addr":                 c.RedisAddr,
		"redis_password":             c.RedisPassword,
		"nats_url":                   c.NATSURL,
		"kratos_admin_url":           c.KratosAdminURL,
		"kratos_public_url":          c.KratosPublicURL,
		"stripe_secret_key":          c.StripeSecretKey,
		"stripe_price_id":            c.StripePriceID,
		"public_base_url":            c.PublicBaseURL,
		"signup_redirect_url":        c.SignupRedirectURL,
		"redirect_delay":             c.RedirectDelay.String(),
		"handoff_secret":             c.HandoffSecret,
		"require_phone_verification": c.RequirePhoneVerification,
		"health_check_spec":          c.HealthCheckSpec,
	})
}
