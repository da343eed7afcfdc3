package timing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPause_ZeroReturnsImmediately(t *testing.T) {
	start := time.Now()
	require.NoError(t, Pause(context.Background(), 0))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPause_Waits(t *testing.T) {
	start := time.Now()
	require.NoError(t, Pause(context.Background(), 50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestPause_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Pause(ctx, 10*time.Second)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPause_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, Pause(ctx, 0), "a done context wins even for zero pauses")
}

func TestStopwatch_FakeClock(t *testing.T) {
	base := time.Date(2026, 1, 30, 14, 30, 0, 0, time.UTC)
	now := base
	sw := Start(func() time.Time { return now })

	now = now.Add(812 * time.Millisecond)
	assert.Equal(t, 812*time.Millisecond, sw.Elapsed())
	assert.Equal(t, base, sw.StartedAt())
}

func TestStopwatch_RealClock(t *testing.T) {
	sw := Start(nil)
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, sw.Elapsed(), 5*time.Millisecond)
}
