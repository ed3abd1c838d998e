package validator

import (
	"context"
	"errors"
	"strconv"

	"onboard-pay/internal/pkg/i18n"
	"onboard-pay/internal/pkg/phone"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// TranslateValidationErrors 翻译所有字段校验错误
func (cv *CustomValidator) TranslateValidationErrors(lang language.Tag, err error) []xerrors.FieldError {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []xerrors.FieldError{{
			Field:   "request",
			Message: i18n.GetErrorMessage(xerrors.CodeInvalidRequest, lang),
			Tag:     "unknown",
		}}
	}

	result := make([]xerrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		result = append(result, xerrors.FieldError{
			Field:   fe.Field(),
			Message: cv.translateFieldError(lang, fe),
			Tag:     fe.Tag(),
		})
	}
	return result
}

// ToAppError 将校验错误转换为 InvalidParams，message 取第一个字段的错误
func (cv *CustomValidator) ToAppError(ctx context.Context, err error) *xerrors.AppError {
	if err == nil {
		return nil
	}
	lang := i18n.GetLanguage(ctx)
	fields := cv.TranslateValidationErrors(lang, err)
	return xerrors.NewFieldErrors(fields[0].Message, fields)
}

// translateFieldError 翻译单个字段校验错误，不回显字段值
func (cv *CustomValidator) translateFieldError(lang language.Tag, fe validator.FieldError) string {
	field := i18n.Translate(lang, fe.Field())

	switch fe.Tag() {
	case "required":
		return i18n.Translate(lang, "%s is required", field)
	case "email":
		return i18n.Translate(lang, "Invalid email address")
	case "signup_password":
		return i18n.Translate(lang, "Password must be at least %s characters", strconv.Itoa(MinPasswordLength))
	case "eqfield":
		if fe.Param() == "Password" {
			return i18n.Translate(lang, "Passwords don't match")
		}
		return i18n.Translate(lang, "%s is invalid", field)
	case "e164_phone":
		raw, _ := fe.Value().(string)
		res := cv.phones.Check(raw)
		if res.Message == "" {
			res.Message = phone.ErrInvalidFormat.Error()
		}
		return i18n.Translate(lang, res.Message)
	case "min":
		return i18n.Translate(lang, "%s must be at least %s characters", field, fe.Param())
	case "max":
		return i18n.Translate(lang, "%s must be at most %s characters", field, fe.Param())
	case "len":
		return i18n.Translate(lang, "%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return i18n.Translate(lang, "%s must contain only digits", field)
	default:
		return i18n.Translate(lang, "%s is invalid", field)
	}
}
