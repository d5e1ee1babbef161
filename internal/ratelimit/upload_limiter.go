// Package ratelimit caps how often a user may upload CVs.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set.
// KEYS[1] = key, ARGV[1] = limit, ARGV[2] = window seconds, ARGV[3] = now (ms), ARGV[4] = member
// Returns 1 if allowed, 0 if limited.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window_ms)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('EXPIRE', key, ARGV[2])
return 1
`)

// Drops the most recent attempt. KEYS[1] = key
var dropNewest = redis.NewScript(`
return redis.call('ZPOPMAX', KEYS[1])
`)

// UploadLimiter enforces a per-user daily upload quota in Redis.
type UploadLimiter struct {
	client redis.Scripter
	perDay int
	window time.Duration
	now    func() time.Time
}

// NewUploadLimiter returns a limiter. A nil client disables limiting.
func NewUploadLimiter(client redis.Scripter, perDay int) *UploadLimiter {
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		client: client,
		perDay: perDay,
		window: 24 * time.Hour,
		now:    time.Now,
	}
}

// AllowUpload records an upload attempt and reports whether it is within quota.
// Redis failures are logged and let the upload through.
func (l *UploadLimiter) AllowUpload(ctx context.Context, userID uuid.UUID) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}

	key := uploadKey(userID)
	now := l.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingWindow.Run(ctx, l.client, []string{key}, l.perDay, int(l.window.Seconds()), now, member).Int()
	if err != nil {
		log.Printf("UploadLimiter: Redis check failed for user %s, allowing upload: %v", userID, err)
		return true, nil
	}
	return res == 1, nil
}

// Refund gives back the slot taken by the latest AllowUpload call, for uploads
// that were admitted but never stored.
func (l *UploadLimiter) Refund(ctx context.Context, userID uuid.UUID) error {
	if l == nil || l.client == nil {
		return nil
	}
	if err := dropNewest.Run(ctx, l.client, []string{uploadKey(userID)}).Err(); err != nil && err != redis.Nil {
		log.Printf("UploadLimiter: Refund failed for user %s: %v", userID, err)
		return err
	}
	return nil
}

func uploadKey(userID uuid.UUID) string {
	return fmt.Sprintf("ratelimit:upload:user:%s", userID)
}
