// File: internal/pkg/i18n/messages.go
package i18n

import (
	"onboard-pay/internal/pkg/xerrors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorMessages 错误码的中文文案，英文沿用 xerrors 中的默认消息
var ErrorMessages = map[xerrors.ErrorCode]string{
	xerrors.CodeSuccess:           "操作成功",
	xerrors.CodeInternalError:     "内部服务错误",
	xerrors.CodeInvalidParams:     "参数错误",
	xerrors.CodeInvalidRequest:    "请求格式错误",
	xerrors.CodeResourceNotFound:  "资源不存在",
	xerrors.CodeRateLimitExceeded: "请求过于频繁",

	xerrors.CodeMissingSession:          "未找到支付会话 ID",
	xerrors.CodeSessionAlreadyActivated: "该支付会话已被使用",
	xerrors.CodeCredentialsUnavailable:  "注册信息已过期，请重新注册",
	xerrors.CodeInvalidToken:            "无效令牌",
	xerrors.CodeOTPInvalid:              "验证码错误",
	xerrors.CodeOTPExpired:              "验证码已过期",
	xerrors.CodeOTPCooldown:             "验证码发送过于频繁，请稍后再试",
	xerrors.CodeOTPMaxAttempts:          "验证码尝试次数过多，请重新获取",

	xerrors.CodeEmailExists:           "邮箱已被注册",
	xerrors.CodePhoneNotVerified:      "手机号尚未验证",
	xerrors.CodeAccountCreationFailed: "创建账号失败",
	xerrors.CodePasswordPolicy:        "密码不符合安全要求",

	xerrors.CodePaymentNotCompleted:       "支付尚未完成",
	xerrors.CodePaymentVerificationFailed: "支付验证失败",

	xerrors.CodeExternalServiceError: "外部服务错误",
	xerrors.CodeKratosError:          "认证服务错误",
	xerrors.CodeCacheError:           "缓存服务错误",
	xerrors.CodeMessageQueueError:    "消息队列错误",
	xerrors.CodePaymentProviderError: "支付服务错误",
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if lang == language.Chinese {
		if msg, ok := ErrorMessages[code]; ok {
			return msg
		}
	}
	return code.Message()
}

// LocalizeAppError 当错误消息仍是错误码默认文案时替换为对应语言
// 外部服务透传的消息保持原样
func LocalizeAppError(appErr *xerrors.AppError, lang language.Tag) string {
	if appErr.Message == "" || appErr.Message == appErr.Code.Message() {
		return GetErrorMessage(appErr.Code, lang)
	}
	return appErr.Message
}

// 界面与校验文案，key 为英文原文
var catalog = map[string]string{
	// 激活页
	"Processing...": "处理中...",
	"Please wait while we complete your registration.": "请稍候，我们正在完成您的注册。",
	"Registration Error": "注册失败",
	"Payment Successful!": "支付成功！",
	"Thank you for your purchase. We've sent you an email with verification instructions.": "感谢您的购买，我们已向您发送了包含验证说明的邮件。",
	"Please check your email to verify your account before logging in.": "登录前请先查收邮件并验证您的账号。",
	"Try Again": "重试",
	"Go to Login": "前往登录",
	"Account created": "账号已创建",
	"Please check your email for verification instructions.": "请查收邮件中的验证说明。",
	"Redirecting to login...": "正在跳转到登录页...",
	"Error": "错误",
	"Verification code sent": "验证码已发送",

	// 字段校验
	"%s is required": "%s不能为空",
	"Invalid email address": "邮箱地址无效",
	"Password must be at least %s characters": "密码长度不能少于%s个字符",
	"Passwords don't match": "两次输入的密码不一致",
	"%s must be at least %s characters": "%s长度不能少于%s个字符",
	"%s must be at most %s characters": "%s长度不能超过%s个字符",
	"%s must be exactly %s characters": "%s长度必须为%s",
	"%s must contain only digits": "%s只能包含数字",
	"%s is invalid": "%s验证失败",
	"Phone number is required": "手机号不能为空",
	"Phone number must not contain letters": "手机号不能包含字母",
	"Phone number is too short": "手机号位数不足",
	"Please enter a valid phone number with country code": "请输入包含国家码的有效手机号",

	// 字段名
	"email": "邮箱",
	"phone": "手机号",
	"password": "密码",
	"confirm_password": "确认密码",
	"code": "验证码",
	"session_id": "支付会话 ID",
}

func init() {
	for key, zh := range catalog {
		_ = message.SetString(language.Chinese, key, zh)
	}
}
