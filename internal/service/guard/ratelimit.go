package guard

import (
	"log"
	"sync"
	"time"
)

// DefaultDailyLimit matches the provider's free-tier request quota.
const DefaultDailyLimit = 200

const resetWindow = 24 * time.Hour

// Usage is a read-only view of the limiter counters.
type Usage struct {
	CallsToday int
	DailyLimit int
	Threshold  int
	Remaining  int
	ResetAt    time.Time
}

// RateLimiter counts successful external calls per rolling day and reports
// when the soft threshold (90% of the daily limit) has been reached.
type RateLimiter struct {
	mu         sync.Mutex
	dailyLimit int
	callsToday int
	resetAt    time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter whose first window ends one day from now.
func NewRateLimiter(dailyLimit int) *RateLimiter {
	return newRateLimiter(dailyLimit, time.Now)
}

func newRateLimiter(dailyLimit int, now func() time.Time) *RateLimiter {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &RateLimiter{
		dailyLimit: dailyLimit,
		resetAt:    now().Add(resetWindow),
		now:        now,
	}
}

// CheckLimit rolls the window over when it has expired and returns true when
// callers should stop using the external provider.
func (l *RateLimiter) CheckLimit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !now.Before(l.resetAt) {
		l.callsToday = 0
		l.resetAt = now.Add(resetWindow)
		log.Printf("[guard] daily api counter reset, next reset at %s", l.resetAt.Format(time.RFC3339))
	}
	return l.callsToday >= l.threshold()
}

// Record counts one successful external call.
func (l *RateLimiter) Record() {
	l.mu.Lock()
	l.callsToday++
	l.mu.Unlock()
}

// Snapshot reports the counters without rolling the window.
func (l *RateLimiter) Snapshot() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Usage{
		CallsToday: l.callsToday,
		DailyLimit: l.dailyLimit,
		Threshold:  l.threshold(),
		Remaining:  max(0, l.dailyLimit-l.callsToday),
		ResetAt:    l.resetAt,
	}
}

func (l *RateLimiter) threshold() int {
	return l.dailyLimit * 9 / 10
}
