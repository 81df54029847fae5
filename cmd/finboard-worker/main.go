package main

import (
	"context"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/resolver"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	logger.Info("Starting finboard-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set; the worker warms its own in-process cache, which servers cannot see")
	}

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)
	defer be.Close()

	cached, closeCache, err := cache.NewCachedReader(ctx, be.Backend, cache.Options{
		RedisURL: cfg.RedisURL,
		Size:     cfg.CacheSize,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize result cache", err)
	}
	defer closeCache()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	refresh := worker.NewRefreshWorker(cached, resolver.New(cached), be.Backend)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if cfg.WarmOnStartup {
		logger.Info("Warming result cache...")
		if err := refresh.WarmAll(runCtx); err != nil {
			logger.Error("Startup cache warm failed", "error", err)
		}
	}

	logger.Info("Worker started, consuming period refresh messages",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	go func() {
		if err := amqpClient.ConsumePeriodRefresh(runCtx, refresh.HandleRefresh); err != nil && runCtx.Err() == nil {
			logger.Error("AMQP consumer stopped", "error", err)
		}
	}()

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
}
