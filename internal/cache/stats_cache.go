package cache

import (
	"context"
	"strconv"

	"accidentsev/internal/model"

	"github.com/redis/go-redis/v9"
)

const statsKey = "stats:predictions"

// StatsCache keeps running prediction counters
type StatsCache interface {
	Record(ctx context.Context, status model.PredictionStatus, label string) error
	Get(ctx context.Context) (*model.PredictionStats, error)
}

type statsCache struct {
	client *redis.Client
}

func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

func (c *statsCache) Record(ctx context.Context, status model.PredictionStatus, label string) error {
	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, statsKey, string(status), 1)
	if label != "" {
		pipe.HIncrBy(ctx, statsKey, label, 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *statsCache) Get(ctx context.Context) (*model.PredictionStats, error) {
	values, err := c.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}
	count := func(field string) int64 {
		n, _ := strconv.ParseInt(values[field], 10, 64)
		return n
	}
	return &model.PredictionStats{
		Responded: count(string(model.PredictionResponded)),
		Rejected:  count(string(model.PredictionRejected)),
		Failed:    count(string(model.PredictionFailed)),
		Grave:     count(model.LabelGrave),
		NonGrave:  count(model.LabelNonGrave),
	}, nil
}
