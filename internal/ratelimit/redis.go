package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript admits only while the counter is below max, so rejected attempts
// never inflate the window. Returns {allowed, count, pttl}.
var takeScript = redis.NewScript(`
local window_ms = tonumber(ARGV[1])
local max = tonumber(ARGV[2])

local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= max then
    local ttl = redis.call('PTTL', KEYS[1])
    if ttl < 0 then
        redis.call('PEXPIRE', KEYS[1], window_ms)
        ttl = window_ms
    end
    return {0, current, ttl}
end

current = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
    redis.call('PEXPIRE', KEYS[1], window_ms)
    ttl = window_ms
end
return {1, current, ttl}
`)

// RedisStore shares counters across processes. The check-and-increment runs
// as one server-side script.
type RedisStore struct {
	client redis.Scripter
	prefix string
}

// NewRedisStore wraps a go-redis client; prefix namespaces the keys.
func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	vals, err := takeScript.Run(ctx, s.client, []string{s.prefix + ":" + key}, window.Milliseconds(), max).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("ratelimit script: unexpected result %v", vals)
	}

	count := int(vals[1])
	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: vals[0] == 1, Limit: max, Remaining: remaining}
	if !d.Allowed {
		d.RetryAfter = time.Duration(vals[2]) * time.Millisecond
	}
	return d, nil
}
