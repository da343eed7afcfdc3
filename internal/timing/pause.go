// Package timing provides context-aware pauses and reaction-time
// measurement for the trial loop.
package timing

import (
	"context"
	"time"
)

// Pause blocks for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately unless ctx is already done.
func Pause(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Stopwatch measures elapsed time from a start instant.
type Stopwatch struct {
	clock Clock
	start time.Time
}

// Start begins a stopwatch on clock. A nil clock uses time.Now, whose
// monotonic reading makes the measurement immune to wall-clock jumps.
func Start(clock Clock) Stopwatch {
	if clock == nil {
		clock = time.Now
	}
	return Stopwatch{clock: clock, start: clock()}
}

// Elapsed returns the time since Start.
func (s Stopwatch) Elapsed() time.Duration {
	return s.clock().Sub(s.start)
}

// StartedAt returns the start instant.
func (s Stopwatch) StartedAt() time.Time { return s.start }
