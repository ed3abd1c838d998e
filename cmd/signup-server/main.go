package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	docs "onboard-pay/docs/signup"
	"onboard-pay/internal/modules/signup"
	"onboard-pay/internal/modules/signup/client"
	"onboard-pay/internal/modules/signup/tasks"
	"onboard-pay/internal/pkg/config"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
	"onboard-pay/internal/pkg/notify"
	redisClient "onboard-pay/internal/pkg/redis"

	"github.com/nats-io/nats.go"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[Main] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log.Init(log.ParseLevel(cfg.LogLevel), cfg.Environment)
	serviceName := config.GetEnvOrDefault("SERVICE_NAME", "signup")
	metrics.SetServiceName(serviceName)
	log.Info("[Main] Configuration loaded", log.Any("config", cfg.LogFields()))

	// Redis：凭证暂存、验证码、会话占用
	rdb, err := redisClient.NewClient(redisClient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, serviceName)
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info("[Main] Connected to Redis", log.String("addr", cfg.RedisAddr))

	// NATS 可选，未配置时通知只返回给页面
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = notify.Connect(cfg.NATSURL, serviceName)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		log.Info("[Main] Connected to NATS", log.String("url", cfg.NATSURL))
	} else {
		log.Warn("[Main] NATS_URL not set, notifications stay in-request")
	}
	publisher := notify.NewPublisher(nc)

	kratos := client.NewKratosClient(cfg.KratosAdminURL, cfg.KratosPublicURL, cfg.KratosSchemaID)
	stripe := client.NewStripeClient(cfg.StripeSecretKey)

	// Swagger 跟随请求的 Host
	docs.SwaggerInfo.Host = ""
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	module, err := signup.NewSignupModule(cfg, signup.Dependencies{
		Store:      rdb,
		Publisher:  publisher,
		Identities: kratos,
		Checkouts:  stripe,
		Probes: map[string]tasks.Probe{
			"redis":  rdb.Healthy,
			"nats":   publisher.Healthy,
			"kratos": kratos.IsReady,
		},
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- module.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("[Main] Shutting down", log.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return module.Shutdown(ctx)
}
