package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NIKIRZATOR/order-service-test/internal/cache"
	"github.com/NIKIRZATOR/order-service-test/internal/domain"
)

const testTTL = 5 * time.Minute

func newTestCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedis(client, testTTL), mr
}

func testOrder() domain.Order {
	return domain.Order{
		ID:     uuid.New(),
		UserID: 42,
		Items: []domain.OrderItem{
			{Name: "keyboard", Count: 2, Price: 5.0},
			{Name: "mouse", Count: 1, Price: 3.5},
		},
		TotalPrice: 13.5,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	order := testOrder()

	require.NoError(t, c.Set(t.Context(), order))

	got, hit, err := c.Get(t.Context(), order.ID)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, order, got)
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	_, hit, err := c.Get(t.Context(), uuid.New())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEntryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	order := testOrder()

	require.NoError(t, c.Set(t.Context(), order))

	mr.FastForward(testTTL + time.Second)

	_, hit, err := c.Get(t.Context(), order.ID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	order := testOrder()

	require.NoError(t, c.Set(t.Context(), order))
	require.NoError(t, c.Delete(t.Context(), order.ID))

	_, hit, err := c.Get(t.Context(), order.ID)
	require.NoError(t, err)
	assert.False(t, hit)
}

// Deleting a key that is not there must not be an error: the cache is
// overwritten unconditionally by write paths and may already be empty.
func TestDeleteMissingKey(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.Delete(t.Context(), uuid.New()))
}

func TestSetOverwritesWhole(t *testing.T) {
	c, _ := newTestCache(t)
	order := testOrder()

	require.NoError(t, c.Set(t.Context(), order))

	order.Status = domain.StatusShipped
	require.NoError(t, c.Set(t.Context(), order))

	got, hit, err := c.Get(t.Context(), order.ID)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, domain.StatusShipped, got.Status)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	order := testOrder()

	require.NoError(t, mr.Set("order:"+order.ID.String(), "not json"))

	_, hit, err := c.Get(t.Context(), order.ID)
	assert.Error(t, err)
	assert.False(t, hit)
}
