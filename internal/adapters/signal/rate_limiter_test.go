package signal

import (
	"testing"
	"time"
)

func TestJoinRateLimiter_BlocksAboveLimit(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewJoinRateLimiter(3, 10*time.Second)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("alice") {
			t.Fatalf("attempt %d blocked below limit", i+1)
		}
	}
	if rl.Allow("alice") {
		t.Fatal("fourth attempt allowed inside window")
	}
	// Other identities have their own budget.
	if !rl.Allow("bob") {
		t.Fatal("unrelated identity throttled")
	}
}

func TestJoinRateLimiter_WindowSlides(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewJoinRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("alice")
	rl.Allow("alice")
	if rl.Allow("alice") {
		t.Fatal("limit not enforced")
	}

	now = now.Add(11 * time.Second)
	if !rl.Allow("alice") {
		t.Fatal("attempt blocked after window passed")
	}
}

func TestJoinRateLimiter_NonPositiveSettingsDisable(t *testing.T) {
	if rl := NewJoinRateLimiter(0, 10*time.Second); rl != nil {
		t.Fatal("zero limit should disable the limiter, not block every join")
	}
	if rl := NewJoinRateLimiter(5, 0); rl != nil {
		t.Fatal("zero window should disable the limiter")
	}
	if rl := NewJoinRateLimiter(-1, -time.Second); rl != nil {
		t.Fatal("negative settings should disable the limiter")
	}
}

func TestJoinRateLimiter_PruneDropsIdleIdentities(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewJoinRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("alice")
	rl.Allow("bob")

	now = now.Add(time.Minute)
	rl.Allow("carol")
	rl.Prune()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.history["alice"]; ok {
		t.Fatal("idle identity survived prune")
	}
	if _, ok := rl.history["carol"]; !ok {
		t.Fatal("active identity pruned")
	}
}
