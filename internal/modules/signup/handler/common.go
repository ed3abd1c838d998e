package handler

import (
	"onboard-pay/internal/pkg/validator"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
)

// bindAndValidate 绑定请求体并做字段校验，失败时返回带字段明细的 AppError
func bindAndValidate(c echo.Context, req interface{}) *xerrors.AppError {
	if err := c.Bind(req); err != nil {
		return xerrors.FromCode(xerrors.CodeInvalidRequest)
	}

	if err := c.Validate(req); err != nil {
		if cv, ok := c.Echo().Validator.(*validator.CustomValidator); ok {
			return cv.ToAppError(c.Request().Context(), err)
		}
		return xerrors.New(xerrors.CodeInvalidParams, err.Error())
	}
	return nil
}
