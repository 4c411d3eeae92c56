package serverutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerUserBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("user_a"))
	assert.True(t, rl.Allow("user_a"))
	assert.False(t, rl.Allow("user_a"))

	// other users have their own bucket
	assert.True(t, rl.Allow("user_b"))
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := newRateLimiter(time.Hour, 1, 20*time.Millisecond)

	assert.True(t, rl.Allow("user_a"))
	assert.False(t, rl.Allow("user_a"))
	assert.Equal(t, 1, rl.limits.ItemCount())

	// the janitor drops the bucket once it has sat idle
	assert.Eventually(t, func() bool { return rl.limits.ItemCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, rl.Allow("user_a"))
}
