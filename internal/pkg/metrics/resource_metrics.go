// File: internal/pkg/metrics/resource_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResourceMetrics 外部依赖指标收集器
type ResourceMetrics struct {
	// Redis 操作指标
	RedisOperations        *prometheus.CounterVec   // 按操作类型和结果
	RedisOperationDuration *prometheus.HistogramVec // 按操作类型
	RedisErrors            *prometheus.CounterVec   // 按错误类型

	// 依赖可用性，1 为可用，由健康检查任务刷新
	DependencyUp *prometheus.GaugeVec
}

// DefaultResourceMetrics 默认的资源指标实例
var DefaultResourceMetrics *ResourceMetrics

// RedisOperationBuckets Redis 操作延迟 buckets（秒）
var RedisOperationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

func init() {
	DefaultResourceMetrics = NewResourceMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewResourceMetricsWithRegistry 创建资源指标收集器（使用自定义注册表）
func NewResourceMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ResourceMetrics {
	factory := promauto.With(registerer)

	return &ResourceMetrics{
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operations_total",
				Help:      "Total number of Redis operations by type and result (success/error)",
			},
			[]string{"operation", "result", "service"},
		),

		RedisOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operation_duration_seconds",
				Help:      "Redis operation duration in seconds by operation type",
				Buckets:   RedisOperationBuckets,
			},
			[]string{"operation", "service"},
		),

		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "errors_total",
				Help:      "Total number of Redis errors by error type",
			},
			[]string{"error_type", "service"},
		),

		DependencyUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dependency_up",
				Help:      "Whether a downstream dependency answered the last health probe (1) or not (0)",
			},
			[]string{"dependency"},
		),
	}
}

// RecordRedisOperation 记录 Redis 操作
func (m *ResourceMetrics) RecordRedisOperation(operation string, success bool, duration time.Duration, service string) {
	result := "success"
	if !success {
		result = "error"
	}

	m.RedisOperations.WithLabelValues(operation, result, service).Inc()
	m.RedisOperationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

// RecordRedisError 记录 Redis 错误
func (m *ResourceMetrics) RecordRedisError(errorType, service string) {
	m.RedisErrors.WithLabelValues(errorType, service).Inc()
}

// SetDependencyUp 更新依赖可用性
func (m *ResourceMetrics) SetDependencyUp(dependency string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.DependencyUp.WithLabelValues(dependency).Set(v)
}
