package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

type fakeKV struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failSet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return redis.NewStatusResult("", f.failSet)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRedisPutThenGet(t *testing.T) {
	kv := newFakeKV()
	c := &Redis{client: kv, ttl: defaultTTL}
	heater := true
	r := domain.Reading{
		ID: "a1", Kind: domain.KindTemperature, Value: 37.6, Unit: "C",
		HeaterActive: &heater, RecordedAt: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}

	require.NoError(t, c.Put(context.Background(), r))
	assert.Contains(t, kv.data, "incubator:latest:temperature")
	assert.Equal(t, 24*time.Hour, kv.ttls["incubator:latest:temperature"])

	got, err := c.Get(context.Background(), domain.KindTemperature)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, 37.6, got.Value)
	require.NotNil(t, got.HeaterActive)
	assert.True(t, *got.HeaterActive)
	assert.True(t, r.RecordedAt.Equal(got.RecordedAt))
}

func TestRedisGetMiss(t *testing.T) {
	c := &Redis{client: newFakeKV(), ttl: defaultTTL}
	_, err := c.Get(context.Background(), domain.KindHumidity)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisPutError(t *testing.T) {
	kv := newFakeKV()
	kv.failSet = errors.New("connection refused")
	c := &Redis{client: kv, ttl: defaultTTL}

	err := c.Put(context.Background(), domain.Reading{Kind: domain.KindHumidity})
	assert.ErrorContains(t, err, "cache latest humidity")
}

func TestRedisGetCorruptValue(t *testing.T) {
	kv := newFakeKV()
	kv.data["incubator:latest:humidity"] = "not json"
	c := &Redis{client: kv, ttl: defaultTTL}

	_, err := c.Get(context.Background(), domain.KindHumidity)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestNop(t *testing.T) {
	var c LatestCache = Nop{}
	assert.NoError(t, c.Put(context.Background(), domain.Reading{}))
	_, err := c.Get(context.Background(), domain.KindTemperature)
	assert.ErrorIs(t, err, ErrMiss)
}
