package protection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token bucket state lives in a hash: tokens and last refill time in ms.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  ts = now
end
if now > ts then
  tokens = math.min(capacity, tokens + refill * (now - ts) / interval)
  ts = now
end

local allowed = 0
local wait = 0
if tokens >= requested then
  tokens = tokens - requested
  allowed = 1
else
  wait = math.ceil((requested - tokens) / refill * interval)
end
redis.call('HSET', key, 'tokens', tostring(tokens), 'ts', tostring(ts))
redis.call('PEXPIRE', key, math.ceil(capacity / refill * interval) + interval)
return {allowed, math.floor(tokens), wait}
`)

var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local requested = tonumber(ARGV[3])

local count = tonumber(redis.call('GET', key) or '0')
local ttl = redis.call('PTTL', key)
if count + requested > max then
  if ttl < 0 then ttl = window end
  return {0, max - count, ttl}
end
count = redis.call('INCRBY', key, requested)
if ttl < 0 then
  redis.call('PEXPIRE', key, window)
end
return {1, max - count, 0}
`)

// Sliding window hits are sorted-set members scored by time in ms.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local requested = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local id = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count + requested > max then
  local wait = 0
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    wait = tonumber(oldest[2]) + window - now
  end
  return {0, max - count, wait}
end
for i = 1, requested do
  redis.call('ZADD', key, now, id .. ':' .. i)
end
redis.call('PEXPIRE', key, window)
return {1, max - count - requested, 0}
`)

// RedisStore shares limiter state between gateway instances
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store over an existing client
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "storefront:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) TakeTokens(ctx context.Context, key string, capacity, refill int, interval time.Duration, requested int, now time.Time) (LimitResult, error) {
	vals, err := tokenBucketScript.Run(ctx, s.client, []string{s.prefix + key},
		capacity, refill, interval.Milliseconds(), requested, now.UnixMilli()).Int64Slice()
	if err != nil {
		return LimitResult{}, fmt.Errorf("protection: token bucket: %w", err)
	}
	return resultFrom(vals), nil
}

func (s *RedisStore) CountFixed(ctx context.Context, key string, max int, window time.Duration, requested int, now time.Time) (LimitResult, error) {
	vals, err := fixedWindowScript.Run(ctx, s.client, []string{s.prefix + key},
		max, window.Milliseconds(), requested).Int64Slice()
	if err != nil {
		return LimitResult{}, fmt.Errorf("protection: fixed window: %w", err)
	}
	return resultFrom(vals), nil
}

func (s *RedisStore) CountSliding(ctx context.Context, key string, max int, window time.Duration, requested int, now time.Time) (LimitResult, error) {
	vals, err := slidingWindowScript.Run(ctx, s.client, []string{s.prefix + key},
		max, window.Milliseconds(), requested, now.UnixMilli(), uuid.NewString()).Int64Slice()
	if err != nil {
		return LimitResult{}, fmt.Errorf("protection: sliding window: %w", err)
	}
	return resultFrom(vals), nil
}

func resultFrom(vals []int64) LimitResult {
	if len(vals) < 3 {
		return LimitResult{}
	}
	return LimitResult{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}
}

var _ LimitStore = (*RedisStore)(nil)
