// File: internal/pkg/i18n/middleware.go
package i18n

import (
	"github.com/labstack/echo/v4"
)

// Middleware Echo 中间件 - 从请求中提取语言偏好并存储到 context
// 优先级: ?lang= 查询参数 > Accept-Language 头部 > 默认语言
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := ParseAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			if code := c.QueryParam("lang"); code != "" {
				lang = ParseLanguageCode(code)
			}

			ctx := WithLanguage(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
