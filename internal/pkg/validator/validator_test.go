package validator

import (
	"context"
	"testing"

	"onboard-pay/internal/pkg/i18n"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type signupForm struct {
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,e164_phone"`
	Password        string `json:"password" validate:"required,signup_password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type otpForm struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

func fieldMessages(fields []xerrors.FieldError) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidate_ValidForm(t *testing.T) {
	cv := New(nil)
	err := cv.Validate(&signupForm{
		Email:           "a@b.com",
		Phone:           "(555) 123-4567",
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})
	assert.NoError(t, err)
}

func TestValidate_FieldMessages(t *testing.T) {
	cv := New(nil)
	err := cv.Validate(&signupForm{
		Email:           "not-an-email",
		Phone:           "555-12",
		Password:        "short",
		ConfirmPassword: "different",
	})
	require.Error(t, err)

	msgs := fieldMessages(cv.TranslateValidationErrors(language.English, err))
	assert.Equal(t, "Invalid email address", msgs["email"])
	assert.Equal(t, "Phone number is too short", msgs["phone"])
	assert.Equal(t, "Password must be at least 8 characters", msgs["password"])
	assert.Equal(t, "Passwords don't match", msgs["confirm_password"])
}

func TestValidate_PhoneWithLetters(t *testing.T) {
	cv := New(nil)
	err := cv.Validate(&signupForm{
		Email:           "a@b.com",
		Phone:           "555-CALL-NOW",
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})
	require.Error(t, err)

	msgs := fieldMessages(cv.TranslateValidationErrors(language.English, err))
	assert.Equal(t, "Phone number must not contain letters", msgs["phone"])
}

func TestToAppError_Chinese(t *testing.T) {
	cv := New(nil)
	err := cv.Validate(&otpForm{})
	require.Error(t, err)

	ctx := i18n.WithLanguage(context.Background(), language.Chinese)
	appErr := cv.ToAppError(ctx, err)
	require.NotNil(t, appErr)
	assert.Equal(t, xerrors.CodeInvalidParams, appErr.Code)
	assert.Equal(t, "验证码不能为空", appErr.Message)

	fields, ok := appErr.Metadata("fields")
	require.True(t, ok)
	assert.Len(t, fields, 1)
}

func TestValidate_OTPCode(t *testing.T) {
	cv := New(nil)
	assert.NoError(t, cv.Validate(&otpForm{Code: "123456"}))

	err := cv.Validate(&otpForm{Code: "12a456"})
	require.Error(t, err)
	msgs := fieldMessages(cv.TranslateValidationErrors(language.English, err))
	assert.Equal(t, "code must contain only digits", msgs["code"])
}
