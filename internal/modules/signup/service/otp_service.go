package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
	"onboard-pay/internal/pkg/notify"
	"onboard-pay/internal/pkg/phone"
	"onboard-pay/internal/pkg/redis"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/google/uuid"
)

const (
	keyOTP           = "signup:otp:"
	keyOTPCooldown   = "signup:otp_cooldown:"
	keyPhoneVerified = "signup:phone_verified:"

	otpLength = 6
)

// OTPConfig 验证码配置
type OTPConfig struct {
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
	VerifiedTTL time.Duration
	Secret      string
}

// OTPTicket 发送结果
type OTPTicket struct {
	Phone       string `json:"phone"`
	RequestID   string `json:"request_id"`
	ExpiresIn   int    `json:"expires_in"`
	ResendAfter int    `json:"resend_after"`
}

// smsMessage 发往短信网关的消息
type smsMessage struct {
	Phone     string `json:"phone"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// OTPService 手机号验证码：哈希存 Redis，短信经 NATS 投递
type OTPService struct {
	store     KeyValueStore
	phones    *phone.Normalizer
	publisher SMSPublisher
	cfg       OTPConfig
	generate  func() (string, error)
}

// NewOTPService 创建验证码服务
func NewOTPService(store KeyValueStore, phones *phone.Normalizer, publisher SMSPublisher, cfg OTPConfig) *OTPService {
	if cfg.VerifiedTTL <= 0 {
		cfg.VerifiedTTL = 30 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &OTPService{
		store:     store,
		phones:    phones,
		publisher: publisher,
		cfg:       cfg,
		generate:  func() (string, error) { return generateNumericOTP(otpLength) },
	}
}

func (s *OTPService) hash(phoneNumber, code string) string {
	sum := sha256.Sum256([]byte(phoneNumber + ":" + code + ":" + s.cfg.Secret))
	return hex.EncodeToString(sum[:])
}

// parsePhone 规范化手机号并记录校验指标
func (s *OTPService) parsePhone(raw string) (string, error) {
	canonical, appErr := s.phones.Parse(raw)
	metrics.DefaultSignupMetrics.ObservePhoneValidation(appErr == nil)
	if appErr != nil {
		return "", appErr
	}
	return canonical, nil
}

// SendOTP 生成并发送验证码，冷却期内重复请求会被拒绝
func (s *OTPService) SendOTP(ctx context.Context, rawPhone string) (*OTPTicket, error) {
	canonical, err := s.parsePhone(rawPhone)
	if err != nil {
		metrics.DefaultSignupMetrics.ObserveOTP("send", "invalid_phone")
		return nil, err
	}

	// 没有短信出口时不生成验证码，否则用户拿不到码也无法完成验证
	if !s.publisher.Configured() {
		metrics.DefaultSignupMetrics.ObserveOTP("send", "error")
		return nil, xerrors.FromCode(xerrors.CodeMessageQueueError).
			WithService("otp_service", "SendOTP").
			WithMetadata("reason", "sms transport not configured")
	}

	ok, err := s.store.SetNX(ctx, keyOTPCooldown+canonical, 1, s.cfg.Cooldown)
	if err != nil {
		return nil, xerrors.NewCacheError("otp_cooldown", err).WithService("otp_service", "SendOTP")
	}
	if !ok {
		metrics.DefaultSignupMetrics.ObserveOTP("send", "cooldown")
		return nil, xerrors.FromCode(xerrors.CodeOTPCooldown).
			WithMetadata("retry_after_seconds", int(s.cfg.Cooldown.Seconds()))
	}

	code, err := s.generate()
	if err != nil {
		_ = s.store.DeleteKey(ctx, keyOTPCooldown+canonical)
		return nil, xerrors.NewWithError(xerrors.CodeInternalError, "failed to generate code", err)
	}

	requestID := uuid.NewString()
	if err := s.store.HSetWithTTL(ctx, keyOTP+canonical, s.cfg.TTL, map[string]interface{}{
		"hash":       s.hash(canonical, code),
		"attempts":   0,
		"request_id": requestID,
	}); err != nil {
		_ = s.store.DeleteKey(ctx, keyOTPCooldown+canonical)
		return nil, xerrors.NewCacheError("otp_store", err).WithService("otp_service", "SendOTP")
	}

	if err := s.publisher.Publish(ctx, notify.SubjectSMSOutbound, smsMessage{
		Phone:     canonical,
		Code:      code,
		RequestID: requestID,
	}); err != nil {
		_ = s.store.DeleteKey(ctx, keyOTP+canonical, keyOTPCooldown+canonical)
		metrics.DefaultSignupMetrics.ObserveOTP("send", "error")
		appErr := xerrors.NewWithError(xerrors.CodeMessageQueueError, xerrors.CodeMessageQueueError.Message(), err)
		return nil, appErr.WithService("otp_service", "SendOTP")
	}

	log.InfoContext(ctx, "验证码已发送", "phone", canonical, "request_id", requestID)
	metrics.DefaultSignupMetrics.ObserveOTP("send", "ok")

	return &OTPTicket{
		Phone:       canonical,
		RequestID:   requestID,
		ExpiresIn:   int(s.cfg.TTL.Seconds()),
		ResendAfter: int(s.cfg.Cooldown.Seconds()),
	}, nil
}

// VerifyOTP 校验验证码，成功后手机号在 VerifiedTTL 内视为已验证
func (s *OTPService) VerifyOTP(ctx context.Context, rawPhone, code string) (string, error) {
	canonical, err := s.parsePhone(rawPhone)
	if err != nil {
		metrics.DefaultSignupMetrics.ObserveOTP("verify", "invalid_phone")
		return "", err
	}
	code = strings.TrimSpace(code)

	key := keyOTP + canonical
	vals, err := s.store.HGetAllMap(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			metrics.DefaultSignupMetrics.ObserveOTP("verify", "expired")
			return "", xerrors.FromCode(xerrors.CodeOTPExpired)
		}
		return "", xerrors.NewCacheError("otp_load", err).WithService("otp_service", "VerifyOTP")
	}

	attempts, _ := strconv.Atoi(vals["attempts"])
	if attempts >= s.cfg.MaxAttempts {
		metrics.DefaultSignupMetrics.ObserveOTP("verify", "max_attempts")
		return "", xerrors.FromCode(xerrors.CodeOTPMaxAttempts)
	}

	want := vals["hash"]
	got := s.hash(canonical, code)
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		n, err := s.store.HIncr(ctx, key, "attempts")
		if err != nil {
			log.WarnContext(ctx, "记录验证码尝试次数失败", log.Any("error", err))
			n = int64(attempts + 1)
		}
		if n >= int64(s.cfg.MaxAttempts) {
			metrics.DefaultSignupMetrics.ObserveOTP("verify", "max_attempts")
			return "", xerrors.FromCode(xerrors.CodeOTPMaxAttempts)
		}
		metrics.DefaultSignupMetrics.ObserveOTP("verify", "invalid")
		return "", xerrors.FromCode(xerrors.CodeOTPInvalid).
			WithMetadata("attempts_left", s.cfg.MaxAttempts-int(n))
	}

	_ = s.store.DeleteKey(ctx, key)
	if err := s.store.SetWithTTL(ctx, keyPhoneVerified+canonical, vals["request_id"], s.cfg.VerifiedTTL); err != nil {
		return "", xerrors.NewCacheError("otp_mark_verified", err).WithService("otp_service", "VerifyOTP")
	}

	log.InfoContext(ctx, "手机号验证通过", "phone", canonical)
	metrics.DefaultSignupMetrics.ObserveOTP("verify", "ok")
	return canonical, nil
}

// IsPhoneVerified canonical 必须是规范化后的号码
func (s *OTPService) IsPhoneVerified(ctx context.Context, canonical string) (bool, error) {
	ok, err := s.store.Exists(ctx, keyPhoneVerified+canonical)
	if err != nil {
		return false, xerrors.NewCacheError("otp_verified_lookup", err).WithService("otp_service", "IsPhoneVerified")
	}
	return ok, nil
}

// ClearPhoneVerified 验证标记只用于一次下单
func (s *OTPService) ClearPhoneVerified(ctx context.Context, canonical string) error {
	return s.store.DeleteKey(ctx, keyPhoneVerified+canonical)
}

func generateNumericOTP(length int) (string, error) {
	if length < 4 || length > 8 {
		return "", fmt.Errorf("otp length must be 4..8")
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
