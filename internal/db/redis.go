package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/xtrntr/tradedesk/internal/models"
	"github.com/xtrntr/tradedesk/internal/store"
)

const redisKeyPrefix = "tradedesk:"

// Redis keeps snapshot records as plain string keys
type Redis struct {
	Client *redis.Client
}

// NewRedis connects and pings the server
func NewRedis(ctx context.Context, addr, password string, database int) (*Redis, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Redis{Client: c}, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func (r *Redis) LoadSnapshot(ctx context.Context, name string) (*models.Snapshot, error) {
	data, err := r.Client.Get(ctx, redisKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveSnapshot writes the record without expiry
func (r *Redis) SaveSnapshot(ctx context.Context, name string, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.Client.Set(ctx, redisKeyPrefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *Redis) DeleteSnapshot(ctx context.Context, name string) error {
	if err := r.Client.Del(ctx, redisKeyPrefix+name).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Persister binds one record name to redis
func (r *Redis) Persister(name string) store.Persister {
	return &redisPersister{r: r, name: name}
}

type redisPersister struct {
	r    *Redis
	name string
}

func (p *redisPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	return p.r.LoadSnapshot(ctx, p.name)
}

func (p *redisPersister) Save(ctx context.Context, snap models.Snapshot) error {
	return p.r.SaveSnapshot(ctx, p.name, snap)
}
