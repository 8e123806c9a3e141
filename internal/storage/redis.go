package storage

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"iitb-internet/internal/model"
)

// Redis keeps the newest events in a capped list, newest first.
type Redis struct {
	client *redis.Client
	key    string
	limit  int64
}

func NewRedis(ctx context.Context, uri, key string, limit int64) (*Redis, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client, key: key, limit: limit}, nil
}

func (r *Redis) Record(ctx context.Context, e model.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, r.key, data)
		p.LTrim(ctx, r.key, 0, r.limit-1)
		return nil
	})
	return err
}

func (r *Redis) Recent(ctx context.Context, n int64) ([]model.Event, error) {
	items, err := r.client.LRange(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(items))
	for _, item := range items {
		var e model.Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *Redis) Close() {
	r.client.Close()
}
