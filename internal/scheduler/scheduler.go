// Package scheduler provides the single cooperative-polling primitive used
// by every long-running component (watchers, UDA watcher, executor):
// a ticker loop that checks a stop signal at ~100ms granularity so shutdown
// is prompt even mid-sleep, per spec §5's <1s shutdown latency target.
package scheduler

import (
	"context"
	"time"
)

// stopCheckGranularity bounds how long Scheduled can take to notice
// cancellation while waiting out an interval.
const stopCheckGranularity = 100 * time.Millisecond

// Body is one iteration of scheduled work. Returning an error does not stop
// the loop; callers that need fatal-halt semantics (per spec §4.2 step 4)
// should track their own retry counter and call cancel() on the context
// they were given.
type Body func(ctx context.Context) error

// ErrorHandler is invoked whenever a Body call returns an error. Passed
// separately from Body so callers can log without cluttering the loop
// bookkeeping.
type ErrorHandler func(err error)

// Run executes body once immediately, then every interval, until ctx is
// cancelled. It is the `scheduled(interval, cancel_token, body)` primitive
// called out in the design notes: every per-chain watcher supervisor loop,
// the UDA watcher, and the counterparty executor all call this instead of
// hand-rolling their own ticker/select loop.
func Run(ctx context.Context, interval time.Duration, body Body, onError ErrorHandler) {
	if err := body(ctx); err != nil && onError != nil {
		onError(err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if err := body(ctx); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// Sleep waits for d, or until ctx is cancelled, checking cancellation at
// stopCheckGranularity so long sleeps (poll_interval, retry_delay) don't
// block shutdown. Returns ctx.Err() if cancelled before d elapsed.
func Sleep(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		step := stopCheckGranularity
		if remaining < step {
			step = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}
}
