package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SignupMetrics 注册支付链路的业务指标
type SignupMetrics struct {
	PhoneValidations   *prometheus.CounterVec
	Checkouts          *prometheus.CounterVec
	OTP                *prometheus.CounterVec
	Activations        *prometheus.CounterVec
	ActivationDuration *prometheus.HistogramVec
}

// DefaultSignupMetrics 全局共享实例
var DefaultSignupMetrics *SignupMetrics

var activationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 20}

func init() {
	DefaultSignupMetrics = NewSignupMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewSignupMetricsWithRegistry 创建 SignupMetrics，tests 可注入独立 registry
func NewSignupMetricsWithRegistry(namespace string, reg prometheus.Registerer) *SignupMetrics {
	factory := promauto.With(reg)

	return &SignupMetrics{
		PhoneValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signup",
				Name:      "phone_validations_total",
				Help:      "Phone normalization attempts by result (valid/invalid)",
			},
			[]string{"result"},
		),

		Checkouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signup",
				Name:      "checkouts_total",
				Help:      "Checkout sessions requested by result",
			},
			[]string{"result"},
		),

		OTP: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signup",
				Name:      "otp_total",
				Help:      "Phone OTP operations by action (send/verify) and result",
			},
			[]string{"action", "result"},
		),

		Activations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signup",
				Name:      "activations_total",
				Help:      "Post-payment activations by terminal outcome (success/error)",
			},
			[]string{"outcome"},
		),

		ActivationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "signup",
				Name:      "activation_duration_seconds",
				Help:      "Time from activation start to terminal state",
				Buckets:   activationBuckets,
			},
			[]string{"outcome"},
		),
	}
}

// ObservePhoneValidation 记录一次手机号校验
func (m *SignupMetrics) ObservePhoneValidation(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.PhoneValidations.WithLabelValues(result).Inc()
}

// ObserveCheckout 记录一次创建支付会话
func (m *SignupMetrics) ObserveCheckout(result string) {
	m.Checkouts.WithLabelValues(result).Inc()
}

// ObserveOTP 记录一次验证码发送或校验
func (m *SignupMetrics) ObserveOTP(action, result string) {
	m.OTP.WithLabelValues(action, result).Inc()
}

// ObserveActivation 记录激活终态及耗时
func (m *SignupMetrics) ObserveActivation(outcome string, duration time.Duration) {
	m.Activations.WithLabelValues(outcome).Inc()
	m.ActivationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
