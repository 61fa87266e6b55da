package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"accidentsev/internal/model"

	"github.com/redis/go-redis/v9"
)

// FormCache stores form sessions in Redis. Every write and read slides the
// expiry forward.
type FormCache interface {
	Set(ctx context.Context, state *model.FormState) error
	Get(ctx context.Context, id string) (*model.FormState, error)
	Delete(ctx context.Context, id string) error
}

type formCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFormCache(client *redis.Client, ttl time.Duration) FormCache {
	return &formCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *formCache) key(id string) string {
	return fmt.Sprintf("form:%s", id)
}

func (c *formCache) Set(ctx context.Context, state *model.FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(state.ID), data, c.ttl).Err()
}

// Get returns nil, nil when the session does not exist or has expired
func (c *formCache) Get(ctx context.Context, id string) (*model.FormState, error) {
	data, err := c.client.GetEx(ctx, c.key(id), c.ttl).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.FormState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	if state.Inputs == nil {
		state.Inputs = map[string]any{}
	}
	return &state, nil
}

func (c *formCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
