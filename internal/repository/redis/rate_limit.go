package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	red "github.com/redis/go-redis/v9"

	"github.com/arklim/passmeter/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding window limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

const defaultRateLimitPrefix = "passmeter:rate-limit"

// KEYS[1] window key
// ARGV[1] now (ms), ARGV[2] exclusive trim bound, ARGV[3] limit, ARGV[4] member, ARGV[5] ttl (ms)
var slidingWindowScript = red.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', KEYS[1], ARGV[5])
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local oldestScore = tonumber(ARGV[1])
if oldest[2] then
	oldestScore = tonumber(oldest[2])
end
return {allowed, count, oldestScore}
`)

// RateLimitRepository keeps attempts in Redis sorted sets scored by unix milliseconds.
type RateLimitRepository struct {
	client *red.Client
	cfg    SlidingWindowConfig
}

func NewRateLimitRepository(client *red.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultRateLimitPrefix
	}
	return &RateLimitRepository{client: client, cfg: cfg}
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)

// Allow records an attempt for key unless limit attempts already fall inside the window.
// Rejected attempts are not recorded.
func (r *RateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (port.RateLimitDecision, error) {
	if window < time.Millisecond {
		return port.RateLimitDecision{}, errors.New("window must be at least one millisecond")
	}
	if limit <= 0 {
		return port.RateLimitDecision{}, errors.New("limit must be positive")
	}

	ttl := max(r.cfg.TTL, window)
	nowMillis := now.UnixMilli()
	args := []any{
		nowMillis,
		"(" + strconv.FormatInt(nowMillis-window.Milliseconds(), 10),
		limit,
		strconv.FormatInt(nowMillis, 10) + "-" + uuid.NewString(),
		ttl.Milliseconds(),
	}

	values, err := slidingWindowScript.Run(ctx, r.client, []string{r.key(key)}, args...).Int64Slice()
	if err != nil {
		return port.RateLimitDecision{}, fmt.Errorf("redis sliding window: %w", err)
	}
	if len(values) != 3 {
		return port.RateLimitDecision{}, fmt.Errorf("redis sliding window: unexpected reply length %d", len(values))
	}

	return port.RateLimitDecision{
		Allowed: values[0] == 1,
		Count:   int(values[1]),
		Oldest:  time.UnixMilli(values[2]).UTC(),
	}, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	return r.cfg.KeyPrefix + ":" + identifier
}
