// File: internal/pkg/xerrors/codes.go
package xerrors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (undefined)", c)
}

// Message 返回错误码对应的默认消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return codeMessages[CodeInternalError]
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// 按领域分段：1 通用 / 2 认证与会话 / 4 用户 / 6 业务 / 7 外部服务
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000
	CodeInternalError     ErrorCode = 100001
	CodeInvalidParams     ErrorCode = 100002
	CodeInvalidRequest    ErrorCode = 100003
	CodeResourceNotFound  ErrorCode = 100404
	CodeRateLimitExceeded ErrorCode = 100429

	// 2xxxxx: 支付会话与验证码
	CodeMissingSession          ErrorCode = 200010
	CodeSessionAlreadyActivated ErrorCode = 200011
	CodeCredentialsUnavailable  ErrorCode = 200012
	CodeInvalidToken            ErrorCode = 200013
	CodeOTPInvalid              ErrorCode = 200020
	CodeOTPExpired              ErrorCode = 200021
	CodeOTPCooldown             ErrorCode = 200022
	CodeOTPMaxAttempts          ErrorCode = 200023

	// 4xxxxx: 用户与账号
	CodeEmailExists           ErrorCode = 400004
	CodePhoneNotVerified      ErrorCode = 400008
	CodeAccountCreationFailed ErrorCode = 400010
	CodePasswordPolicy        ErrorCode = 400011

	// 6xxxxx: 支付业务
	CodePaymentNotCompleted       ErrorCode = 600010
	CodePaymentVerificationFailed ErrorCode = 600011

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001
	CodeKratosError          ErrorCode = 700002
	CodeCacheError           ErrorCode = 700004
	CodeMessageQueueError    ErrorCode = 700005
	CodePaymentProviderError ErrorCode = 700006
)

// -----------------------------------------------------------------------------
// 错误消息映射（面向用户的默认英文文案）
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "ok",
	CodeInternalError:     "internal server error",
	CodeInvalidParams:     "invalid parameters",
	CodeInvalidRequest:    "invalid request",
	CodeResourceNotFound:  "resource not found",
	CodeRateLimitExceeded: "too many requests",

	CodeMissingSession:          "No session ID found",
	CodeSessionAlreadyActivated: "this payment session has already been used",
	CodeCredentialsUnavailable:  "signup details have expired, please sign up again",
	CodeInvalidToken:            "invalid signup token",
	CodeOTPInvalid:              "invalid verification code",
	CodeOTPExpired:              "verification code expired",
	CodeOTPCooldown:             "please wait before requesting another code",
	CodeOTPMaxAttempts:          "too many attempts, request a new code",

	CodeEmailExists:           "an account with this email already exists",
	CodePhoneNotVerified:      "phone number has not been verified",
	CodeAccountCreationFailed: "failed to create user account",
	CodePasswordPolicy:        "password does not meet the security policy",

	CodePaymentNotCompleted:       "Payment not completed",
	CodePaymentVerificationFailed: "payment verification failed",

	CodeExternalServiceError: "external service error",
	CodeKratosError:          "authentication service error",
	CodeCacheError:           "cache service error",
	CodeMessageQueueError:    "message queue error",
	CodePaymentProviderError: "payment provider error",
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParams, CodeInvalidRequest, CodeMissingSession, CodeInvalidToken,
		CodeOTPInvalid, CodeOTPExpired, CodePasswordPolicy:
		return http.StatusBadRequest
	case CodeResourceNotFound:
		return http.StatusNotFound
	case CodeSessionAlreadyActivated, CodeEmailExists:
		return http.StatusConflict
	case CodeCredentialsUnavailable:
		return http.StatusGone
	case CodeRateLimitExceeded, CodeOTPCooldown, CodeOTPMaxAttempts:
		return http.StatusTooManyRequests
	case CodePhoneNotVerified:
		return http.StatusForbidden
	case CodePaymentNotCompleted, CodePaymentVerificationFailed:
		return http.StatusPaymentRequired
	case CodeAccountCreationFailed:
		return http.StatusUnprocessableEntity
	}

	switch {
	case code >= 700000 && code < 800000:
		return http.StatusBadGateway
	case code >= 400000 && code < 700000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 200000 && code < 300000:
		return "session"
	case code >= 400000 && code < 500000:
		return "user"
	case code >= 600000 && code < 700000:
		return "payment"
	case code >= 700000 && code < 800000:
		return "external"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code == CodeInternalError:
		return LevelError
	case code >= 700000:
		return LevelCritical
	case code >= 100002 && code < 700000:
		return LevelWarn
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
func isRetryableByCode(code ErrorCode) bool {
	switch code {
	case CodeInternalError, CodeExternalServiceError, CodeKratosError, CodeCacheError,
		CodeMessageQueueError, CodePaymentProviderError, CodeRateLimitExceeded:
		return true
	}
	return false
}
