package signup

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	_ "onboard-pay/docs/signup" // Swagger 文档

	custommiddleware "onboard-pay/internal/middleware"
	"onboard-pay/internal/modules/signup/handler"
	"onboard-pay/internal/modules/signup/service"
	"onboard-pay/internal/modules/signup/tasks"
	"onboard-pay/internal/pkg/config"
	"onboard-pay/internal/pkg/i18n"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
	"onboard-pay/internal/pkg/notify"
	"onboard-pay/internal/pkg/phone"
	"onboard-pay/internal/pkg/response"
	"onboard-pay/internal/pkg/trace"
	"onboard-pay/internal/pkg/validator"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// otpRateLimit 验证码接口每个 IP 每秒的请求数
const otpRateLimit = 2

// Dependencies 外部依赖，由 main 创建，测试中可以替换为内存实现
type Dependencies struct {
	Store      service.KeyValueStore
	Publisher  *notify.Publisher
	Identities service.IdentityProvider
	Checkouts  service.CheckoutProvider
	// Probes 健康检查探测项，key 为依赖名
	Probes map[string]tasks.Probe
}

// SignupModule 注册支付服务：HTTP 接口、定时探测
type SignupModule struct {
	cfg        *config.Config
	deps       Dependencies
	logger     log.Logger
	phones     *phone.Normalizer
	respWriter response.Writer
	httpServer *echo.Echo

	activator         *service.Activator
	signupHandler     *handler.SignupHandler
	paymentHandler    *handler.PaymentHandler
	activationHandler *handler.ActivationHandler
	healthTask        *tasks.HealthProbeTask
}

// NewSignupModule 按顺序完成初始化，返回可启动的模块
func NewSignupModule(cfg *config.Config, deps Dependencies) (*SignupModule, error) {
	if deps.Store == nil || deps.Identities == nil || deps.Checkouts == nil {
		return nil, errors.New("signup: store, identities and checkouts are required")
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.NewPublisher(nil)
	}

	m := &SignupModule{
		cfg:    cfg,
		deps:   deps,
		logger: log.GetLogger(),
	}

	// 1. 手机号策略
	if err := m.initPhonePolicy(); err != nil {
		return nil, err
	}

	// 2. 响应输出
	m.respWriter = response.NewResponseHandler(m.logger, cfg.Environment)

	// 3. HTTP 服务与中间件
	m.initHTTPServer()

	// 4. 服务与处理器
	m.initServicesAndHandlers()

	// 5. 路由
	m.setupRoutes()

	// 6. 依赖探测任务（Start 时启动）
	m.healthTask = tasks.NewHealthProbeTask(cfg.HealthCheckSpec, deps.Probes, m.logger)

	return m, nil
}

func (m *SignupModule) initPhonePolicy() error {
	phones, err := phone.New(phone.Policy{
		DefaultCountryCode: m.cfg.PhoneDefaultCountryCode,
		SubscriberLength:   m.cfg.PhoneSubscriberLength,
		MinTotalDigits:     m.cfg.PhoneMinDigits,
		MaxTotalDigits:     m.cfg.PhoneMaxDigits,
	})
	if err != nil {
		return fmt.Errorf("signup: phone policy: %w", err)
	}
	m.phones = phones
	return nil
}

// initHTTPServer 创建 echo 实例并按顺序挂载中间件
func (m *SignupModule) initHTTPServer() {
	m.httpServer = echo.New()
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true
	m.httpServer.Validator = validator.New(m.phones)
	m.httpServer.HTTPErrorHandler = custommiddleware.HTTPErrorHandler(m.respWriter, m.logger)

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(trace.Middleware())

	// 2. Metrics 中间件 - 按路由模板记录请求指标
	m.httpServer.Use(metrics.Middleware())

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if !m.cfg.IsProduction() {
		loggingConfig.DetailedLog = true
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(m.logger, loggingConfig))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, m.logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, m.logger))

	// 7. CORS 与安全响应头
	m.httpServer.Use(custommiddleware.CORSMiddleware(nil))
	m.httpServer.Use(custommiddleware.SecurityMiddleware())

	m.logger.Info("[Signup Module] HTTP middlewares configured",
		"environment", m.cfg.Environment,
		"detailed_log", loggingConfig.DetailedLog,
	)
}

// initServicesAndHandlers 组装服务和处理器
func (m *SignupModule) initServicesAndHandlers() {
	cfg := m.cfg
	deps := m.deps

	vault := service.NewCredentialVault(deps.Store, cfg.HandoffSecret, cfg.HandoffTTL)
	otp := service.NewOTPService(deps.Store, m.phones, deps.Publisher, service.OTPConfig{
		TTL:         cfg.OTPTTL,
		Cooldown:    cfg.OTPCooldown,
		MaxAttempts: cfg.OTPMaxAttempts,
		Secret:      cfg.HandoffSecret,
	})
	checkout := service.NewCheckoutService(deps.Checkouts, vault, m.phones, otp, service.CheckoutConfig{
		PriceID:                  cfg.StripePriceID,
		PublicBaseURL:            cfg.PublicBaseURL,
		RequirePhoneVerification: cfg.RequirePhoneVerification,
	})
	payments := service.NewPaymentService(deps.Checkouts, vault)
	accounts := service.NewAccountService(deps.Identities)
	guard := service.NewRedisSessionGuard(deps.Store, cfg.HandoffTTL)

	m.activator = service.NewActivator(payments, accounts, guard, deps.Publisher, service.ActivatorConfig{
		RedirectURL:   cfg.SignupRedirectURL,
		RedirectDelay: cfg.RedirectDelay,
	})

	m.signupHandler = handler.NewSignupHandler(otp, checkout, m.respWriter)
	m.paymentHandler = handler.NewPaymentHandler(payments, m.respWriter)
	m.activationHandler = handler.NewActivationHandler(m.activator, deps.Publisher, m.respWriter)
}

// setupRoutes 注册路由
func (m *SignupModule) setupRoutes() {
	v1 := m.httpServer.Group("/api/v1")
	{
		signup := v1.Group("/signup")
		otp := signup.Group("/otp", custommiddleware.RateLimitMiddleware(otpRateLimit))
		otp.POST("", m.signupHandler.SendOTP)
		otp.POST("/verify", m.signupHandler.VerifyOTP)
		signup.POST("/checkout", m.signupHandler.CreateCheckout)

		v1.POST("/payments/verify", m.paymentHandler.VerifyPayment)
		v1.GET("/activation", m.activationHandler.GetActivation)
	}

	// 支付回跳地址
	m.httpServer.GET("/success", m.activationHandler.SuccessPage)

	// Swagger UI
	m.httpServer.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health check
	m.httpServer.GET("/health", m.Health)

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler())
}

// Echo 返回 HTTP 服务实例
func (m *SignupModule) Echo() *echo.Echo {
	return m.httpServer
}

// Start 启动依赖探测并监听 HTTP，阻塞直到服务关闭
func (m *SignupModule) Start() error {
	if err := m.healthTask.Start(); err != nil {
		return fmt.Errorf("signup: start health probe: %w", err)
	}

	m.logger.Info("[Signup Module] Starting HTTP server", "addr", m.cfg.HTTPAddr)
	if err := m.httpServer.Start(m.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("signup: http server: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭：先停止接收请求，再停止定时任务
func (m *SignupModule) Shutdown(ctx context.Context) error {
	err := m.httpServer.Shutdown(ctx)
	if err != nil {
		m.logger.Error("[Signup Module] HTTP server shutdown failed", err)
	} else {
		m.logger.Info("[Signup Module] HTTP server closed")
	}

	m.healthTask.Stop()
	return err
}
