package cache

import (
	"context"
	"testing"
	"time"

	"accidentsev/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestFormCacheRoundTrip(t *testing.T) {
	mr, client := newRedis(t)
	c := NewFormCache(client, time.Minute)
	ctx := context.Background()

	state := &model.FormState{
		ID:          "abc",
		CurrentPage: 3,
		Inputs:      map[string]any{"dep": "2A", "lum": 1},
		Revision:    2,
	}
	require.NoError(t, c.Set(ctx, state))
	assert.True(t, mr.Exists("form:abc"))

	got, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.CurrentPage)
	assert.Equal(t, "2A", got.Inputs["dep"])
	assert.Equal(t, 1.0, got.Inputs["lum"])
	assert.Equal(t, int64(2), got.Revision)

	require.NoError(t, c.Delete(ctx, "abc"))
	got, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFormCacheSlidingExpiry(t *testing.T) {
	mr, client := newRedis(t)
	c := NewFormCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &model.FormState{ID: "s"}))
	mr.FastForward(40 * time.Second)

	got, err := c.Get(ctx, "s")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.Inputs)
	assert.Equal(t, time.Minute, mr.TTL("form:s"))

	mr.FastForward(61 * time.Second)
	got, err = c.Get(ctx, "s")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStatsCache(t *testing.T) {
	_, client := newRedis(t)
	c := NewStatsCache(client)
	ctx := context.Background()

	empty, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.PredictionStats{}, empty)

	require.NoError(t, c.Record(ctx, model.PredictionResponded, model.LabelGrave))
	require.NoError(t, c.Record(ctx, model.PredictionResponded, model.LabelNonGrave))
	require.NoError(t, c.Record(ctx, model.PredictionRejected, ""))

	stats, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.PredictionStats{Responded: 2, Rejected: 1, Grave: 1, NonGrave: 1}, stats)
}
