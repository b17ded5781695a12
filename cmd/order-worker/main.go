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
	"github.com/NIKIRZATOR/order-service-test/internal/pkg/metrics"
	"github.com/NIKIRZATOR/order-service-test/internal/pkg/telemetry"
	"github.com/NIKIRZATOR/order-service-test/internal/queue"
	"github.com/NIKIRZATOR/order-service-test/internal/repository"
	"github.com/NIKIRZATOR/order-service-test/internal/worker"
)

const metricsAddr = ":9100"

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

	w := worker.New(orderRepo, orderCache, cfg.ProcessDelay, metrics.NewWorkerMetrics())
	consumer := queue.NewConsumer(cfg.RabbitURL, cfg.OrderQueue, cfg.ReconnectInterval, w)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	slog.Info("order worker running", "queue", cfg.OrderQueue)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("consumer stopped", "error", err)
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", "error", err)
	}
}
