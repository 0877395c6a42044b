// Package cache keeps the most recent reading of each kind in Redis so the
// dashboard's current values do not need a history query.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

// ErrMiss is returned when no reading of the requested kind is cached.
var ErrMiss = errors.New("cache miss")

const (
	keyPrefix = "incubator:latest:"
	// readings of a sensor that went quiet expire from the cache
	defaultTTL = 24 * time.Hour
)

// LatestCache stores the last reading per kind.
type LatestCache interface {
	Put(ctx context.Context, r domain.Reading) error
	Get(ctx context.Context, kind domain.Kind) (domain.Reading, error)
}

// kv is the part of the redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Redis struct {
	client kv
	closer func() error
	ttl    time.Duration
}

// NewRedis connects to addr and checks the server answers.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{client: rdb, closer: rdb.Close, ttl: defaultTTL}, nil
}

func (c *Redis) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Put overwrites the cached reading of r's kind.
func (c *Redis) Put(ctx context.Context, r domain.Reading) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+string(r.Kind), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache latest %s: %w", r.Kind, err)
	}
	return nil
}

func (c *Redis) Get(ctx context.Context, kind domain.Kind) (domain.Reading, error) {
	val, err := c.client.Get(ctx, keyPrefix+string(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Reading{}, ErrMiss
	}
	if err != nil {
		return domain.Reading{}, fmt.Errorf("read latest %s: %w", kind, err)
	}

	var r domain.Reading
	if err := json.Unmarshal(val, &r); err != nil {
		return domain.Reading{}, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return r, nil
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Put(context.Context, domain.Reading) error { return nil }

func (Nop) Get(context.Context, domain.Kind) (domain.Reading, error) {
	return domain.Reading{}, ErrMiss
}
