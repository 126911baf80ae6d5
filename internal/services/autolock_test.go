package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdog_Check(t *testing.T) {
	clock := newFakeClock()
	var fired atomic.Int32
	wd := NewWatchdog(clock, 15*time.Second, 5*time.Minute, func() { fired.Add(1) })
	wd.Start(context.Background())
	defer wd.Stop()

	start := clock.Now()
	assert.False(t, wd.Check(start.Add(5*time.Minute)), "exactly the threshold is not idle")
	assert.Zero(t, fired.Load())

	assert.True(t, wd.Check(start.Add(5*time.Minute+time.Millisecond)))
	assert.True(t, wd.Check(start.Add(time.Hour)), "stays fired")
	assert.EqualValues(t, 1, fired.Load(), "fires once")
}

func TestWatchdog_TouchResets(t *testing.T) {
	clock := newFakeClock()
	wd := NewWatchdog(clock, 15*time.Second, time.Minute, func() {})
	wd.Start(context.Background())
	defer wd.Stop()

	clock.Advance(50 * time.Second)
	wd.Touch()
	clock.Advance(50 * time.Second)

	assert.False(t, wd.Check(clock.Now()))
	assert.True(t, wd.Check(clock.Now().Add(11*time.Second)))
}

func TestWatchdog_SetThreshold(t *testing.T) {
	clock := newFakeClock()
	wd := NewWatchdog(clock, time.Second, time.Hour, func() {})
	wd.Start(context.Background())
	defer wd.Stop()

	wd.SetThreshold(time.Minute)
	assert.Equal(t, time.Minute, wd.Threshold())
	assert.True(t, wd.Check(clock.Now().Add(2*time.Minute)))
}

func TestWatchdog_TicksDriveCheck(t *testing.T) {
	clock := newFakeClock()
	var fired atomic.Bool
	wd := NewWatchdog(clock, 15*time.Second, time.Minute, func() { fired.Store(true) })
	wd.Start(context.Background())
	defer wd.Stop()

	for range 4 {
		clock.Tick(t, 15*time.Second)
	}
	assert.False(t, fired.Load())

	clock.Tick(t, 15*time.Second)
	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}

func TestWatchdog_StopPreventsFiring(t *testing.T) {
	var fired atomic.Bool
	wd := NewWatchdog(SystemClock{}, 5*time.Millisecond, 10*time.Millisecond, func() { fired.Store(true) })
	wd.Start(context.Background())
	wd.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestWatchdog_RealClock(t *testing.T) {
	var fired atomic.Bool
	wd := NewWatchdog(nil, 5*time.Millisecond, 20*time.Millisecond, func() { fired.Store(true) })
	wd.Start(context.Background())
	defer wd.Stop()

	require.Eventually(t, fired.Load, 2*time.Second, 5*time.Millisecond)
}

func TestWatchdog_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var fired atomic.Bool
	wd := NewWatchdog(SystemClock{}, 5*time.Millisecond, 10*time.Millisecond, func() { fired.Store(true) })
	wd.Start(ctx)
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}
