package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/NIKIRZATOR/order-service-test/internal/domain"
)

// schema is the DDL executed once on startup. processed_orders is the
// idempotency ledger: its primary key turns duplicate deliveries of the
// same order into no-ops.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id          UUID PRIMARY KEY,
    user_id     BIGINT NOT NULL,
    items       JSONB NOT NULL,
    total_price DOUBLE PRECISION NOT NULL,
    status      TEXT NOT NULL DEFAULT 'PENDING',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS processed_orders (
    order_id     UUID PRIMARY KEY,
    processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Migrate applies the schema. Safe to call from every binary on startup.
func (r *OrderRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pool.Exec schema: %w", err)
	}
	return nil
}

func (r *OrderRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// InsertOrder persists a new PENDING order. The identifier is generated
// here so it is collision-resistant and not guessable from a sequence;
// created_at is assigned by the database.
func (r *OrderRepository) InsertOrder(ctx context.Context, userID int64, items []domain.OrderItem, totalPrice float64) (domain.Order, error) {
	var o domain.Order

	itemsJSON, err := json.Marshal(mapItemsToRows(items))
	if err != nil {
		return o, fmt.Errorf("json.Marshal items: %w", err)
	}

	orderID := uuid.New()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, items, total_price, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		orderID, userID, itemsJSON, totalPrice, domain.StatusPending)

	o = domain.Order{
		ID:         orderID,
		UserID:     userID,
		Items:      items,
		TotalPrice: totalPrice,
		Status:     domain.StatusPending,
	}

	if err := row.Scan(&o.CreatedAt); err != nil {
		return domain.Order{}, fmt.Errorf("row.Scan: %w", err)
	}

	return o, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, items, total_price, status, created_at
		 FROM orders WHERE id = $1`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return o, fmt.Errorf("scanOrder: %w", err)
	}

	return o, nil
}

// UpdateOrderStatus applies a status transition as a single row-level
// update. Concurrent patches on the same order serialize here.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	var o domain.Order

	row := r.pool.QueryRow(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1
		 RETURNING id, user_id, items, total_price, status, created_at`,
		orderID, status)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return o, fmt.Errorf("scanOrder: %w", err)
	}

	return o, nil
}

func (r *OrderRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, items, total_price, status, created_at
		 FROM orders WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return orders, nil
}

// MarkProcessed claims an order for processing exactly once. It reports
// false when the order was already claimed by an earlier delivery.
func (r *OrderRepository) MarkProcessed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`INSERT INTO processed_orders (order_id) VALUES ($1)
		 ON CONFLICT (order_id) DO NOTHING`, orderID)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return cmdTag.RowsAffected() == 1, nil
}

func (r *OrderRepository) IsProcessed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var processed bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_orders WHERE order_id = $1)`, orderID).
		Scan(&processed)
	if err != nil {
		return false, fmt.Errorf("row.Scan: %w", err)
	}

	return processed, nil
}

// itemRow is the JSONB shape of a single line item inside the orders table.
type itemRow struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

func mapItemsToRows(items []domain.OrderItem) []itemRow {
	return lo.Map(items, func(item domain.OrderItem, _ int) itemRow {
		return itemRow{Name: item.Name, Count: item.Count, Price: item.Price}
	})
}

func mapRowsToItems(rows []itemRow) []domain.OrderItem {
	return lo.Map(rows, func(row itemRow, _ int) domain.OrderItem {
		return domain.OrderItem{Name: row.Name, Count: row.Count, Price: row.Price}
	})
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o         domain.Order
		itemsJSON []byte
		status    string
	)

	if err := row.Scan(&o.ID, &o.UserID, &itemsJSON, &o.TotalPrice, &status, &o.CreatedAt); err != nil {
		return o, err
	}

	var rows []itemRow
	if err := json.Unmarshal(itemsJSON, &rows); err != nil {
		return o, fmt.Errorf("json.Unmarshal items: %w", err)
	}
	o.Items = mapRowsToItems(rows)

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}
	o.Status = parsedStatus

	return o, nil
}
