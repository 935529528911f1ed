package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterInMemory(t *testing.T) {
	rl := NewRateLimiter("", "", 0, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(ctx, 1), "request %d should pass", i+1)
	}
	assert.False(t, rl.Allow(ctx, 1), "fourth request in the window is blocked")

	// Another user has their own window.
	assert.True(t, rl.Allow(ctx, 2))
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter("", "", 0, 1, 10*time.Millisecond)
	ctx := context.Background()

	assert.True(t, rl.Allow(ctx, 1))
	assert.False(t, rl.Allow(ctx, 1))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow(ctx, 1), "window expired")
}
