package validator

import (
	"unicode/utf8"

	"onboard-pay/internal/pkg/phone"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength 注册密码最小长度
const MinPasswordLength = 8

func registerRules(v *validator.Validate, phones *phone.Normalizer) {
	_ = v.RegisterValidation("e164_phone", func(fl validator.FieldLevel) bool {
		return phones.Check(fl.Field().String()).Valid
	})
	_ = v.RegisterValidation("signup_password", validateSignupPassword)
}

// validateSignupPassword 密码至少 8 个字符（按 rune 计）
func validateSignupPassword(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) >= MinPasswordLength
}
