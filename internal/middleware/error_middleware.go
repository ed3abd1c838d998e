package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
	"onboard-pay/internal/pkg/response"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware 统一错误处理中间件
// handler 返回的错误在这里写成统一响应，并计入错误指标
func ErrorMiddleware(respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			return writeError(c, respWriter, logger, err)
		}
	}
}

// HTTPErrorHandler 替换 echo 默认的错误处理器
// 直接调用 c.Error 的中间件（如 RateLimiter）绕过 ErrorMiddleware，由这里兜底
func HTTPErrorHandler(respWriter response.Writer, logger log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil {
			return
		}
		if werr := writeError(c, respWriter, logger, err); werr != nil {
			logger.ErrorContext(c.Request().Context(), "写错误响应失败", log.Any("error", werr))
		}
	}
}

func writeError(c echo.Context, respWriter response.Writer, logger log.Logger, err error) error {
	ctx := c.Request().Context()

	var appErr *xerrors.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
	case errors.As(err, &echoErr):
		appErr = convertEchoError(echoErr)
	default:
		appErr = xerrors.NewWithError(
			xerrors.CodeInternalError,
			xerrors.CodeInternalError.Message(),
			err,
		).WithService("echo-middleware", "error_handler")

		logger.ErrorContext(ctx, "未处理的错误",
			log.Any("original_error", err),
			log.String("error_type", fmt.Sprintf("%T", err)),
		)
	}

	if metrics.DefaultErrorMetrics != nil {
		metrics.DefaultErrorMetrics.RecordError(appErr, c.Request().Method, metrics.GetServiceName())
	}

	// 已经写出响应时只能记录
	if c.Response().Committed {
		logger.WarnContext(ctx, "响应已提交，忽略错误", log.Any("error", appErr))
		return nil
	}
	return respWriter.WriteError(ctx, c.Response(), appErr)
}

// convertEchoError 将 Echo 错误转换为业务错误
func convertEchoError(echoErr *echo.HTTPError) *xerrors.AppError {
	msg := fmt.Sprintf("%v", echoErr.Message)
	switch echoErr.Code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return xerrors.FromCode(xerrors.CodeInvalidRequest).WithMetadata("echo_message", msg)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return xerrors.FromCode(xerrors.CodeResourceNotFound).WithMetadata("echo_message", msg)
	case http.StatusTooManyRequests:
		return xerrors.FromCode(xerrors.CodeRateLimitExceeded).WithMetadata("echo_message", msg)
	default:
		return xerrors.FromCode(xerrors.CodeInternalError).
			WithMetadata("echo_code", fmt.Sprintf("%d", echoErr.Code)).
			WithMetadata("echo_message", msg)
	}
}
