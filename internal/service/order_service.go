// Package service coordinates the order lifecycle across store, cache and
// queue. The store is the single source of truth; the cache is a derived,
// TTL-bounded copy; the queue decouples creation from processing.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/NIKIRZATOR/order-service-test/internal/cache"
	"github.com/NIKIRZATOR/order-service-test/internal/domain"
	"github.com/NIKIRZATOR/order-service-test/internal/pkg/metrics"
)

type Repository interface {
	InsertOrder(ctx context.Context, userID int64, items []domain.OrderItem, totalPrice float64) (domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error)
	ListByOwner(ctx context.Context, userID int64) ([]domain.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, orderID uuid.UUID) error
}

type OrderService struct {
	repo      Repository
	cache     cache.Cache
	publisher Publisher
	metrics   *metrics.ServiceMetrics
}

func NewOrder(repo Repository, c cache.Cache, publisher Publisher, m *metrics.ServiceMetrics) *OrderService {
	return &OrderService{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		metrics:   m,
	}
}

// Create validates the request, persists the order, then populates the
// cache and publishes the creation event. Cache and queue are side
// channels: their failures are logged, never surfaced, and never roll back
// the store write. An order persisted but not enqueued is the accepted
// at-least-once gap.
func (s *OrderService) Create(ctx context.Context, userID int64, items []domain.OrderItem, totalPrice float64) (domain.Order, error) {
	if err := domain.ValidateOrder(items, totalPrice); err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.InsertOrder(ctx, userID, items, totalPrice)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.InsertOrder: %w", err)
	}

	s.metrics.OrderCreated()
	slog.InfoContext(ctx, "order created",
		"order_id", order.ID, "user_id", userID, "total_price", totalPrice)

	if err := s.cache.Set(ctx, order); err != nil {
		slog.WarnContext(ctx, "failed to populate cache after create",
			"order_id", order.ID, "error", err)
	}

	if err := s.publisher.Publish(ctx, order.ID); err != nil {
		s.metrics.PublishFailure()
		slog.ErrorContext(ctx, "order persisted but not enqueued",
			"order_id", order.ID, "error", err)
	}

	return order, nil
}

// Get serves reads cache-first. A hit never re-validates against the
// store; staleness is bounded by the cache TTL. Ownership is enforced on
// both paths.
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID, requesterID int64) (domain.Order, error) {
	cached, hit, err := s.cache.Get(ctx, orderID)
	if err != nil {
		slog.WarnContext(ctx, "cache lookup failed, falling back to store",
			"order_id", orderID, "error", err)
	}
	if hit {
		if cached.UserID != requesterID {
			return domain.Order{}, domain.ErrForbidden
		}
		s.metrics.CacheHit()
		return cached, nil
	}
	s.metrics.CacheMiss()

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.GetOrder: %w", err)
	}

	if order.UserID != requesterID {
		return domain.Order{}, domain.ErrForbidden
	}

	if err := s.cache.Set(ctx, order); err != nil {
		slog.WarnContext(ctx, "failed to repopulate cache",
			"order_id", orderID, "error", err)
	}

	return order, nil
}

// Patch applies a status transition. Writes never trust the cache: the
// authoritative record is loaded from the store, updated row-level, and
// the cache is overwritten whole with the post-update snapshot.
func (s *OrderService) Patch(ctx context.Context, orderID uuid.UUID, requesterID int64, status string) (domain.Order, error) {
	newStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("status %q: %w", status, err)
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.GetOrder: %w", err)
	}

	if order.UserID != requesterID {
		return domain.Order{}, domain.ErrForbidden
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, orderID, newStatus)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.UpdateOrderStatus: %w", err)
	}

	slog.InfoContext(ctx, "order status updated",
		"order_id", orderID, "status", newStatus)

	if err := s.cache.Set(ctx, updated); err != nil {
		slog.WarnContext(ctx, "failed to refresh cache after patch",
			"order_id", orderID, "error", err)
	}

	return updated, nil
}

// ListByOwner returns the owner's orders newest-first, straight from the
// store. Collection results are never cached.
func (s *OrderService) ListByOwner(ctx context.Context, ownerID, requesterID int64) ([]domain.Order, error) {
	if ownerID != requesterID {
		return nil, domain.ErrForbidden
	}

	orders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repo.ListByOwner: %w", err)
	}

	return orders, nil
}
