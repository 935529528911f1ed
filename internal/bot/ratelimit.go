package bot

import (
	"context"
	"strconv"
	"sync"
	"time"

	"choresbot/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// RateLimiter throttles command handling per user with a fixed window.
// With a redis address configured it counts via INCR/EXPIRE so restarts do
// not reset windows; otherwise it keeps counters in memory. Redis errors
// fail open: the bot stays available.
type RateLimiter struct {
	max    int
	window time.Duration
	rdb    *redis.Client

	mu      sync.Mutex
	clients map[int64]*windowCount
}

type windowCount struct {
	start time.Time
	count int
}

// NewRateLimiter builds a limiter. addr may be empty for the in-memory mode.
func NewRateLimiter(addr, password string, db, max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		max:     max,
		window:  window,
		clients: make(map[int64]*windowCount),
	}

	if addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, falling back to in-memory rate limiting", "error", err)
		} else {
			rl.rdb = rdb
		}
	}
	return rl
}

// Allow reports whether the user may run another command right now.
func (rl *RateLimiter) Allow(ctx context.Context, userID int64) bool {
	if rl.rdb != nil {
		return rl.allowRedis(ctx, userID)
	}
	return rl.allowMemory(userID)
}

func (rl *RateLimiter) allowRedis(ctx context.Context, userID int64) bool {
	key := "rl:" + strconv.FormatInt(int64(rl.window.Seconds()), 10) + ":" + strconv.FormatInt(userID, 10)

	val, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		// fail-open on redis errors
		return true
	}
	if val == 1 {
		rl.rdb.Expire(ctx, key, rl.window)
	}
	return val <= int64(rl.max)
}

func (rl *RateLimiter) allowMemory(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	wc, ok := rl.clients[userID]
	if !ok || now.Sub(wc.start) > rl.window {
		rl.clients[userID] = &windowCount{start: now, count: 1}
		return true
	}
	wc.count++
	return wc.count <= rl.max
}
