// Package cache holds time-bounded, derived snapshots of orders in Redis.
// The cache is never authoritative: entries may be stale or absent, and
// every failure degrades to a store round trip at the caller.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/NIKIRZATOR/order-service-test/internal/domain"
)

type Cache interface {
	// Get returns the cached order and whether the key was present.
	Get(ctx context.Context, orderID uuid.UUID) (domain.Order, bool, error)
	// Set overwrites the snapshot for the order with the configured TTL.
	Set(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, orderID uuid.UUID) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (r *redisCache) Get(ctx context.Context, orderID uuid.UUID) (domain.Order, bool, error) {
	var o domain.Order

	raw, err := r.client.Get(ctx, orderKey(orderID)).Result()
	if err == redis.Nil {
		return o, false, nil
	}
	if err != nil {
		return o, false, fmt.Errorf("client.Get: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return o, false, fmt.Errorf("json.Unmarshal snapshot: %w", err)
	}

	o, err = snap.toDomain()
	if err != nil {
		return o, false, fmt.Errorf("snap.toDomain: %w", err)
	}

	return o, true, nil
}

func (r *redisCache) Set(ctx context.Context, order domain.Order) error {
	data, err := json.Marshal(newSnapshot(order))
	if err != nil {
		return fmt.Errorf("json.Marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, orderKey(order.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (r *redisCache) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := r.client.Del(ctx, orderKey(orderID)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}

func orderKey(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}

// snapshot is the wire format of a cached order. Status and timestamp are
// plain strings so entries stay readable across schema evolution.
type snapshot struct {
	ID         string         `json:"id"`
	UserID     int64          `json:"user_id"`
	Items      []snapshotItem `json:"items"`
	TotalPrice float64        `json:"total_price"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"created_at"`
}

type snapshotItem struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

func newSnapshot(order domain.Order) snapshot {
	return snapshot{
		ID:     order.ID.String(),
		UserID: order.UserID,
		Items: lo.Map(order.Items, func(item domain.OrderItem, _ int) snapshotItem {
			return snapshotItem{Name: item.Name, Count: item.Count, Price: item.Price}
		}),
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s snapshot) toDomain() (domain.Order, error) {
	var o domain.Order

	orderID, err := uuid.Parse(s.ID)
	if err != nil {
		return o, fmt.Errorf("uuid.Parse[%s]: %w", s.ID, err)
	}

	status, err := domain.ToOrderStatus(s.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", s.Status, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, s.CreatedAt)
	if err != nil {
		return o, fmt.Errorf("time.Parse[%s]: %w", s.CreatedAt, err)
	}

	return domain.Order{
		ID:     orderID,
		UserID: s.UserID,
		Items: lo.Map(s.Items, func(item snapshotItem, _ int) domain.OrderItem {
			return domain.OrderItem{Name: item.Name, Count: item.Count, Price: item.Price}
		}),
		TotalPrice: s.TotalPrice,
		Status:     status,
		CreatedAt:  createdAt,
	}, nil
}
