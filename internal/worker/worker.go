// Package worker consumes normalized order tasks and processes each order
// effectively once. Delivery is at-least-once, so every step is either
// idempotent or guarded by the processed-orders ledger.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/NIKIRZATOR/order-service-test/internal/cache"
	"github.com/NIKIRZATOR/order-service-test/internal/domain"
	"github.com/NIKIRZATOR/order-service-test/internal/pkg/metrics"
	"github.com/NIKIRZATOR/order-service-test/internal/queue"
)

// Repository is the slice of the store the worker needs.
type Repository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	MarkProcessed(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type Worker struct {
	repo         Repository
	cache        cache.Cache
	processDelay time.Duration
	metrics      *metrics.WorkerMetrics
}

func New(repo Repository, c cache.Cache, processDelay time.Duration, m *metrics.WorkerMetrics) *Worker {
	return &Worker{
		repo:         repo,
		cache:        c,
		processDelay: processDelay,
		metrics:      m,
	}
}

var _ queue.Handler = (*Worker)(nil)

// Handle runs one task through received -> processing -> processed.
// Malformed payloads and unknown orders are acknowledged and dropped;
// transient store failures are requeued; a duplicate delivery of an
// already-processed order acknowledges without doing the work again.
func (w *Worker) Handle(ctx context.Context, body []byte) queue.Outcome {
	task, err := Normalize(body)
	if err != nil {
		slog.WarnContext(ctx, "dropping unparseable message", "body", string(body))
		w.metrics.Dropped()
		return queue.Ack
	}

	orderID, err := uuid.Parse(task.OrderID)
	if err != nil {
		slog.WarnContext(ctx, "dropping message with malformed order id",
			"order_id", task.OrderID, "error", err)
		w.metrics.Dropped()
		return queue.Ack
	}

	order, err := w.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.WarnContext(ctx, "dropping message for unknown order", "order_id", orderID)
			w.metrics.Dropped()
			return queue.Ack
		}
		slog.ErrorContext(ctx, "store unavailable, requeueing", "order_id", orderID, "error", err)
		return queue.Requeue
	}

	claimed, err := w.repo.MarkProcessed(ctx, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to claim order, requeueing", "order_id", orderID, "error", err)
		return queue.Requeue
	}
	if !claimed {
		slog.InfoContext(ctx, "order already processed, skipping", "order_id", orderID)
		w.metrics.Duplicate()
		return queue.Ack
	}

	slog.InfoContext(ctx, "processing order", "order_id", orderID)

	if err := w.process(ctx); err != nil {
		// Shutdown mid-processing: the claim stands, so the
		// redelivered message resolves as a duplicate.
		slog.WarnContext(ctx, "processing interrupted", "order_id", orderID, "error", err)
		return queue.Requeue
	}

	// Refresh the snapshot so readers see post-processing state without a
	// store round trip. Best-effort: a cache failure never fails the task.
	if err := w.cache.Set(ctx, order); err != nil {
		slog.WarnContext(ctx, "failed to refresh cache after processing",
			"order_id", orderID, "error", err)
	}

	slog.InfoContext(ctx, "order processed", "order_id", orderID)
	w.metrics.Processed()
	return queue.Ack
}

// process stands in for the real side effects (payment capture, inventory
// reservation) this pipeline would drive in production.
func (w *Worker) process(ctx context.Context) error {
	if w.processDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(w.processDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
