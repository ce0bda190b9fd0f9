// Package digest generates the daily stock digest: quota-gated model
// calls, per-stock prompts, batch summarization with per-stock fallback,
// a memoized market overview, and final document rendering.
package digest

import (
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/models"
)

// Default quota limits. Generous on purpose: the tracker exists to fail
// gracefully under extreme surge, not to throttle normal runs.
const (
	DefaultRequestsPerMinute = 1000
	DefaultRequestsPerDay    = 999999
)

// QuotaTracker enforces per-minute and per-day ceilings on model calls
// by blocking the caller until the next call is safe. It is the single
// shared arbiter for the whole process: the market overview and every
// batch and fallback call go through the same instance.
type QuotaTracker struct {
	mu         sync.Mutex
	rpm        int
	rpd        int
	window     []time.Time // request timestamps within the trailing minute
	dailyCount int
	dailyReset time.Time

	now    func() time.Time
	sleep  func(time.Duration)
	logger *common.Logger
}

// QuotaOption configures a QuotaTracker
type QuotaOption func(*QuotaTracker)

// WithQuotaLogger sets the logger
func WithQuotaLogger(logger *common.Logger) QuotaOption {
	return func(q *QuotaTracker) {
		q.logger = logger
	}
}

// WithClock replaces the wall clock and sleep function, for tests
func WithClock(now func() time.Time, sleep func(time.Duration)) QuotaOption {
	return func(q *QuotaTracker) {
		q.now = now
		q.sleep = sleep
	}
}

// NewQuotaTracker creates a tracker with the given per-minute and
// per-day limits. Non-positive limits are a configuration error.
func NewQuotaTracker(requestsPerMinute, requestsPerDay int, opts ...QuotaOption) (*QuotaTracker, error) {
	if requestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", requestsPerMinute)
	}
	if requestsPerDay <= 0 {
		return nil, fmt.Errorf("requests per day must be positive, got %d", requestsPerDay)
	}

	q := &QuotaTracker{
		rpm:    requestsPerMinute,
		rpd:    requestsPerDay,
		now:    time.Now,
		sleep:  time.Sleep,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(q)
	}

	q.dailyReset = q.now().Add(24 * time.Hour)

	return q, nil
}

// Admit blocks until the next model call is within quota, then records
// it. It never fails; its only effect is a synchronous sleep on the
// calling goroutine.
func (q *QuotaTracker) Admit() {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()

	// Reset the daily counter once the deadline is crossed
	if !now.Before(q.dailyReset) {
		q.dailyCount = 0
		q.dailyReset = now.Add(24 * time.Hour)
	}

	if q.dailyCount >= q.rpd {
		wait := q.dailyReset.Sub(now)
		q.logger.Warn().Dur("wait", wait).Msg("Daily quota reached, waiting until reset")
		q.sleep(wait)
		now = q.now()
		q.dailyCount = 0
		q.dailyReset = now.Add(24 * time.Hour)
	}

	q.prune(now)

	// One-request safety buffer under the per-minute ceiling
	if len(q.window) > 0 && len(q.window) >= q.rpm-1 {
		wait := time.Minute - now.Sub(q.window[0])
		if wait > 0 {
			q.logger.Debug().Dur("wait", wait).Msg("Per-minute quota reached, waiting")
			q.sleep(wait)
			now = q.now()
			q.prune(now)
		}
	}

	q.window = append(q.window, now)
	q.dailyCount++
}

// Stats returns current quota usage. Pruning the trailing window is a
// side effect: the stored window may shrink.
func (q *QuotaTracker) Stats() models.QuotaStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.prune(q.now())

	return models.QuotaStats{
		RequestsLastMinute: len(q.window),
		RequestsToday:      q.dailyCount,
		PerMinuteLimit:     q.rpm,
		DailyLimit:         q.rpd,
	}
}

// Reset clears the window, zeroes the daily counter, and restarts the
// daily deadline. Intended for test isolation.
func (q *QuotaTracker) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.window = q.window[:0]
	q.dailyCount = 0
	q.dailyReset = q.now().Add(24 * time.Hour)
}

// prune drops window entries older than one minute. Callers hold q.mu.
func (q *QuotaTracker) prune(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(q.window) && q.window[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		q.window = append(q.window[:0], q.window[i:]...)
	}
}
