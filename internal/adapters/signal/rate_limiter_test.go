package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinRateLimiter_Window(t *testing.T) {
	req := require.New(t)
	now := time.Unix(1_700_000_000, 0)
	rl := NewJoinRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	// Given two attempts inside the window
	req.True(rl.Allow("ct-1"))
	req.True(rl.Allow("ct-1"))

	// Then the third is refused
	req.False(rl.Allow("ct-1"))

	// And another client is unaffected
	req.True(rl.Allow("ct-2"))

	// When the window slides past the first attempts
	now = now.Add(time.Minute + time.Second)

	// Then the client may join again
	req.True(rl.Allow("ct-1"))
}

func TestJoinRateLimiter_Prunes_Stale_Clients(t *testing.T) {
	req := require.New(t)
	now := time.Unix(1_700_000_000, 0)
	rl := NewJoinRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("old"))
	now = now.Add(2 * time.Second)
	req.True(rl.Allow("new"))

	req.NotContains(rl.history, "old")
	req.Contains(rl.history, "new")
}
