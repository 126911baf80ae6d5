package services

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultAutoLockAfter         = 5 * time.Minute
	DefaultAutoLockCheckInterval = 15 * time.Second
)

// Watchdog fires onIdle once when no activity has been recorded for longer
// than the threshold. Idleness is only evaluated on ticks, so the lock lands
// up to one interval after the threshold passes.
type Watchdog struct {
	clock    Clock
	interval time.Duration
	onIdle   func()

	mu        sync.Mutex
	threshold time.Duration
	last      time.Time
	fired     bool
	cancel    context.CancelFunc
}

func NewWatchdog(clock Clock, interval, threshold time.Duration, onIdle func()) *Watchdog {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Watchdog{
		clock:     clock,
		interval:  interval,
		threshold: threshold,
		onIdle:    onIdle,
	}
}

// Start begins polling. Activity is considered to have happened at Start.
// Calling Start on a running watchdog does nothing.
func (w *Watchdog) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.last = w.clock.Now()
	w.mu.Unlock()

	ticker := w.clock.NewTicker(w.interval)
	go w.run(ctx, ticker)
}

func (w *Watchdog) run(ctx context.Context, ticker Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			if w.Check(w.clock.Now()) {
				return
			}
		}
	}
}

// Check evaluates idleness at now and fires onIdle if the threshold has been
// exceeded. It reports whether the watchdog has fired.
func (w *Watchdog) Check(now time.Time) bool {
	w.mu.Lock()
	if w.fired {
		w.mu.Unlock()
		return true
	}
	if now.Sub(w.last) <= w.threshold {
		w.mu.Unlock()
		return false
	}
	w.fired = true
	w.mu.Unlock()

	w.onIdle()
	return true
}

// Touch records activity.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	w.last = w.clock.Now()
	w.mu.Unlock()
}

// SetThreshold changes the idle limit of a running watchdog.
func (w *Watchdog) SetThreshold(d time.Duration) {
	w.mu.Lock()
	w.threshold = d
	w.mu.Unlock()
}

func (w *Watchdog) Threshold() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.threshold
}

// Stop cancels polling. It does not wait for the polling goroutine, so it is
// safe to call from onIdle.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
}
