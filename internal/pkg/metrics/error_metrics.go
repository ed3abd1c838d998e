// File: internal/pkg/metrics/error_metrics.go
package metrics

import (
	"strconv"
	"strings"

	"onboard-pay/internal/pkg/xerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorMetrics 错误响应指标
type ErrorMetrics struct {
	// 错误总数（按错误码）
	ErrorsByCode *prometheus.CounterVec

	// 可重试的外部依赖错误
	RetryableErrors *prometheus.CounterVec
}

// DefaultErrorMetrics 默认的错误指标实例
var DefaultErrorMetrics *ErrorMetrics

func init() {
	DefaultErrorMetrics = NewErrorMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewErrorMetricsWithRegistry 创建错误指标收集器（使用自定义注册表）
func NewErrorMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ErrorMetrics {
	factory := promauto.With(registerer)

	return &ErrorMetrics{
		ErrorsByCode: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of error responses by error code, category and level",
			},
			[]string{"service", "method", "code", "category", "level"},
		),

		RetryableErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retryable_errors_total",
				Help:      "Total number of retryable errors by error code",
			},
			[]string{"service", "code"},
		),
	}
}

// RecordError 记录一次错误响应
func (m *ErrorMetrics) RecordError(appErr *xerrors.AppError, method, service string) {
	if appErr == nil {
		return
	}

	if method == "" {
		method = "UNKNOWN"
	} else {
		method = strings.ToUpper(method)
	}

	code := strconv.Itoa(appErr.Code.ToInt())
	m.ErrorsByCode.WithLabelValues(service, method, code, appErr.Category, appErr.Level.String()).Inc()

	if appErr.IsRetryable() {
		m.RetryableErrors.WithLabelValues(service, code).Inc()
	}
}
