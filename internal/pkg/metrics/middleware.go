// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"net/http"
	"time"

	"onboard-pay/internal/pkg/ctxkey"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware Echo 中间件 - 记录 HTTP 方法到 context，并按路由模板记录请求指标
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := ctxkey.WithValue(req.Context(), ctxkey.HTTPMethod, req.Method)
			c.SetRequest(req.WithContext(ctx))

			if IsHealthCheckEndpoint(req.URL.Path) {
				return next(c)
			}

			m := DefaultHTTPMetrics
			service := GetServiceName()
			m.IncInProgress(service)
			start := time.Now()

			err := next(c)

			// 错误由后续错误中间件写出时这里已是最终状态码
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}

			m.DecInProgress(service)
			m.RecordRequest(service, c.Path(), req.Method, status, time.Since(start))
			return err
		}
	}
}

// EchoHandler Echo 框架的 Prometheus metrics 处理器
func EchoHandler() echo.HandlerFunc {
	h := promhttp.HandlerFor(GetGatherer(), promhttp.HandlerOpts{})
	return echo.WrapHandler(h)
}
