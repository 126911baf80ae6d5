package services

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/models"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

var testKDF = cryptox.KDF{Iterations: 1000}

var (
	testPass  = []byte("correct horse battery staple")
	otherPass = []byte("tr0ub4dor&3")
)

// fakeClock is a manually driven Clock. Ticks are delivered synchronously to
// the most recently created ticker.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Tick advances time by d and hands one tick to the newest ticker.
func (c *fakeClock) Tick(t *testing.T, d time.Duration) {
	t.Helper()
	c.Advance(d)

	c.mu.Lock()
	require.NotEmpty(t, c.tickers, "no ticker has been created")
	tk := c.tickers[len(c.tickers)-1]
	now := c.now
	c.mu.Unlock()

	select {
	case tk.ch <- now:
	case <-time.After(2 * time.Second):
		t.Fatal("tick was not consumed")
	}
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

// syncBuffer is a bytes.Buffer safe for the logger and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newEngine(t *testing.T, name string) storage.Engine {
	t.Helper()
	e, err := storage.Open(context.Background(), name, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func forEachEngine(t *testing.T, fn func(t *testing.T, e storage.Engine)) {
	for _, name := range []string{storage.EngineSQLite, storage.EngineBolt} {
		t.Run(name, func(t *testing.T) { fn(t, newEngine(t, name)) })
	}
}

func newSession(t *testing.T, e storage.Engine, opts ...SessionOption) *Session {
	t.Helper()
	base := []SessionOption{WithKDF(testKDF), WithClock(newFakeClock())}
	s, err := NewSession(context.Background(), e, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Logout)
	return s
}

func registeredSession(t *testing.T, e storage.Engine, opts ...SessionOption) *Session {
	t.Helper()
	s := newSession(t, e, opts...)
	require.NoError(t, s.Register(context.Background(), testPass))
	return s
}

func sampleEntry(notes string) models.Entry {
	return models.Entry{
		SourceType:    models.SourceFantasy,
		SoloOrPartner: models.Solo,
		Intensity:     3,
		Notes:         notes,
	}
}

func newTestLogger(buf *syncBuffer) logging.Logger {
	return logging.New(buf, slog.LevelDebug)
}
