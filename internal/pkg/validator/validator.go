// File: internal/pkg/validator/validator.go
package validator

import (
	"reflect"
	"strings"

	"onboard-pay/internal/pkg/phone"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wraps go-playground validator for Echo
type CustomValidator struct {
	validator *validator.Validate
	phones    *phone.Normalizer
}

// Validate implements echo.Validator interface
// 返回原始 validator.ValidationErrors，由 ToAppError 按请求语言翻译
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new custom validator instance
func New(phones *phone.Normalizer) *CustomValidator {
	if phones == nil {
		phones = phone.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// 错误中的字段名使用 json tag，和请求体保持一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	registerRules(v, phones)

	return &CustomValidator{
		validator: v,
		phones:    phones,
	}
}

var _ echo.Validator = (*CustomValidator)(nil)
