package signal

import (
	"sync"
	"time"

	"github.com/driftapp/callrelay/internal/domain"
)

// JoinRateLimiter throttles join attempts per identity over a sliding
// window. Authorization lookups hit an external store, so unbounded join
// retries are a cheap way to hammer it.
type JoinRateLimiter struct {
	mu      sync.Mutex
	history map[domain.UserID][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewJoinRateLimiter returns nil when limit or window is non-positive;
// a nil limiter disables throttling, the same way the controller treats a
// nil verifier.
func NewJoinRateLimiter(limit int, window time.Duration) *JoinRateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &JoinRateLimiter{
		history: make(map[domain.UserID][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (rl *JoinRateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	attempts := rl.history[uid]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[uid] = fresh
		return false
	}

	rl.history[uid] = append(fresh, now)
	return true
}

// Prune drops identities whose attempts all aged out of the window, so the
// map does not grow with every identity ever seen.
func (rl *JoinRateLimiter) Prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.window)
	for uid, attempts := range rl.history {
		stale := true
		for _, t := range attempts {
			if t.After(windowStart) {
				stale = false
				break
			}
		}
		if stale {
			delete(rl.history, uid)
		}
	}
}
