package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/resolver"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)

	cacheOpts := cache.Options{RedisURL: cfg.RedisURL, Size: cfg.CacheSize, TTL: cfg.CacheTTL}
	cached, closeCache, err := cache.NewCachedReader(ctx, be.Backend, cacheOpts)
	if err != nil {
		be.Close()
		cli.Fatal(logger, "Failed to initialize result cache", err, "redis_url_set", cfg.RedisURL != "")
	}

	opts := apphttp.Options{
		Addr:        ":" + cfg.Port,
		Resolver:    resolver.New(cached),
		Writer:      be.Writer,
		Invalidator: cached,
		Ping:        be.Ping,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   ratelimit.DefaultConfig(),
	}

	// AMQP is optional; without it other replicas see writes once their
	// cache entries expire.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, period refresh messages disabled", "error", err)
		} else {
			opts.Publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(opts)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", "error", err)
			}
		}
		if err := closeCache(); err != nil {
			logger.Error("Failed to close result cache", "error", err)
		}
		if err := be.Close(); err != nil {
			logger.Error("Failed to close data backend", "error", err)
		}
	})

	logger.Info("Starting finboard server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache", cacheOpts.Describe(),
		"writable", be.Writer != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
