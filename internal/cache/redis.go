package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/domain"
)

const (
	lockRetryMin = 5 * time.Millisecond
	lockRetryMax = 100 * time.Millisecond
)

// releaseScript deletes the lock only while it still carries our token, so a
// holder whose lock expired never frees somebody else's.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client     redis.UniversalClient
	flightsTTL time.Duration
	lockTTL    time.Duration
	log        *slog.Logger
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, lockTTL time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewRedisCacheWithClient(client, flightsTTL, lockTTL)
}

func NewRedisCacheWithClient(client redis.UniversalClient, flightsTTL, lockTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		flightsTTL: flightsTTL,
		lockTTL:    lockTTL,
		log:        slog.Default().With("component", "redis-cache"),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns the cached flight list, or nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// LockFlight takes the cluster-wide lock of a flight. It polls until the
// lock is free or ctx ends. The lock expires after lockTTL if the holder
// dies without releasing it.
func (c *RedisCache) LockFlight(ctx context.Context, flightID int64) (func(), error) {
	key := flightLockKey(flightID)
	token := uuid.NewString()
	wait := lockRetryMin

	for {
		ok, err := c.client.SetNX(ctx, key, token, c.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return func() { c.unlock(key, token) }, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait = nextWait(wait)
	}
}

func (c *RedisCache) unlock(key, token string) {
	// The caller's context may already be done; release on a fresh one.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, c.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("release flight lock", "key", key, "error", err)
	}
}

func nextWait(cur time.Duration) time.Duration {
	next := cur * 2
	if next > lockRetryMax {
		return lockRetryMax
	}
	return next
}

func flightsKey() string {
	return "cache:flights"
}

func flightLockKey(flightID int64) string {
	return fmt.Sprintf("lock:flight:%d", flightID)
}
