package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/NIKIRZATOR/order-service-test/internal/cache"
	"github.com/NIKIRZATOR/order-service-test/internal/config"
	"github.com/NIKIRZATOR/order-service-test/internal/httpx"
	"github.com/NIKIRZATOR/order-service-test/internal/pkg/metrics"
	"github.com/NIKIRZATOR/order-service-test/internal/pkg/telemetry"
	"github.com/NIKIRZATOR/order-service-test/internal/queue"
	"github.com/NIKIRZATOR/order-service-test/internal/repository"
	"github.com/NIKIRZATOR/order-service-test/internal/service"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	orderRepo := repository.NewOrder(pool)
	if err := orderRepo.Migrate(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	orderCache := cache.NewRedis(redisClient, cfg.CacheTTL)
	publisher := queue.NewPublisher(cfg.RabbitURL, cfg.OrderQueue)

	orders := service.NewOrder(orderRepo, orderCache, publisher, metrics.NewServiceMetrics())
	handler := httpx.NewHandler(orders, orderRepo)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("order service running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
