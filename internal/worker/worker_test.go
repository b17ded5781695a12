package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/NIKIRZATOR/order-service-test/internal/domain"
	"github.com/NIKIRZATOR/order-service-test/internal/queue"
	"github.com/NIKIRZATOR/order-service-test/internal/worker"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRepo struct {
	orders    map[uuid.UUID]domain.Order
	processed map[uuid.UUID]bool

	getCalls int
	getErr   error
	markErr  error
}

func newFakeRepo(orders ...domain.Order) *fakeRepo {
	r := &fakeRepo{
		orders:    make(map[uuid.UUID]domain.Order),
		processed: make(map[uuid.UUID]bool),
	}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeRepo) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	r.getCalls++
	if r.getErr != nil {
		return domain.Order{}, r.getErr
	}
	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (r *fakeRepo) MarkProcessed(_ context.Context, orderID uuid.UUID) (bool, error) {
	if r.markErr != nil {
		return false, r.markErr
	}
	if r.processed[orderID] {
		return false, nil
	}
	r.processed[orderID] = true
	return true, nil
}

type fakeCache struct {
	sets    int
	lastSet domain.Order
}

func (c *fakeCache) Get(context.Context, uuid.UUID) (domain.Order, bool, error) {
	return domain.Order{}, false, nil
}

func (c *fakeCache) Set(_ context.Context, order domain.Order) error {
	c.sets++
	c.lastSet = order
	return nil
}

func (c *fakeCache) Delete(context.Context, uuid.UUID) error {
	return nil
}

func testOrder() domain.Order {
	return domain.Order{
		ID:         uuid.New(),
		UserID:     42,
		Items:      []domain.OrderItem{{Name: "keyboard", Count: 2, Price: 5.0}},
		TotalPrice: 10.0,
		Status:     domain.StatusPending,
	}
}

func messageFor(order domain.Order) []byte {
	return []byte(`{"order_id":"` + order.ID.String() + `"}`)
}

func TestHandle_ProcessesOrder(t *testing.T) {
	order := testOrder()
	repo := newFakeRepo(order)
	c := &fakeCache{}
	w := worker.New(repo, c, 0, nil)

	outcome := w.Handle(t.Context(), messageFor(order))

	assert.Equal(t, queue.Ack, outcome)
	assert.True(t, repo.processed[order.ID])
	require.Equal(t, 1, c.sets)
	assert.Equal(t, order.ID, c.lastSet.ID)
}

func TestHandle_RedeliveryIsNoOp(t *testing.T) {
	order := testOrder()
	repo := newFakeRepo(order)
	c := &fakeCache{}
	w := worker.New(repo, c, 0, nil)

	first := w.Handle(t.Context(), messageFor(order))
	second := w.Handle(t.Context(), messageFor(order))

	assert.Equal(t, queue.Ack, first)
	assert.Equal(t, queue.Ack, second)
	assert.True(t, repo.processed[order.ID])
	// The duplicate delivery must not redo the work.
	assert.Equal(t, 1, c.sets)
}

func TestHandle_UnparseableIsDropped(t *testing.T) {
	repo := newFakeRepo()
	w := worker.New(repo, &fakeCache{}, 0, nil)

	for _, body := range []string{`"abc"`, `[1,2]`, ``} {
		outcome := w.Handle(t.Context(), []byte(body))
		assert.Equal(t, queue.Ack, outcome, body)
	}
	assert.Zero(t, repo.getCalls)
}

func TestHandle_NonUUIDIdentifierIsDropped(t *testing.T) {
	repo := newFakeRepo()
	w := worker.New(repo, &fakeCache{}, 0, nil)

	outcome := w.Handle(t.Context(), []byte(`{"order_id":123}`))

	assert.Equal(t, queue.Ack, outcome)
	assert.Zero(t, repo.getCalls)
}

func TestHandle_UnknownOrderIsDropped(t *testing.T) {
	repo := newFakeRepo()
	c := &fakeCache{}
	w := worker.New(repo, c, 0, nil)

	outcome := w.Handle(t.Context(), messageFor(testOrder()))

	assert.Equal(t, queue.Ack, outcome)
	assert.Zero(t, c.sets)
}

func TestHandle_StoreErrorIsRequeued(t *testing.T) {
	order := testOrder()
	repo := newFakeRepo(order)
	repo.getErr = errors.New("connection refused")
	w := worker.New(repo, &fakeCache{}, 0, nil)

	outcome := w.Handle(t.Context(), messageFor(order))

	assert.Equal(t, queue.Requeue, outcome)
	assert.False(t, repo.processed[order.ID])
}

func TestHandle_ClaimErrorIsRequeued(t *testing.T) {
	order := testOrder()
	repo := newFakeRepo(order)
	repo.markErr = errors.New("connection refused")
	w := worker.New(repo, &fakeCache{}, 0, nil)

	outcome := w.Handle(t.Context(), messageFor(order))

	assert.Equal(t, queue.Requeue, outcome)
}
