package testutil

import (
	"fmt"
	"sync"
	"time"

	"bcup-go/internal/bcup"
)

// StubClock is a manual bcup.Clock. Safe for concurrent use. Tickers it
// creates fire from Advance; like time.Ticker, each ticker buffers at most
// one pending tick, so a long gap coalesces into a single catch-up tick.
type StubClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*StubTicker
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) NewTicker(d time.Duration) bcup.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &StubTicker{period: d, ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by d and fires every ticker whose period
// has elapsed.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		t.advance(d, c.now)
	}
}

// StubTicker is a manually driven bcup.Ticker.
type StubTicker struct {
	mu      sync.Mutex
	period  time.Duration
	elapsed time.Duration
	stopped bool
	ch      chan time.Time
}

func (t *StubTicker) C() <-chan time.Time { return t.ch }

func (t *StubTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Fire delivers one tick immediately, regardless of elapsed time.
func (t *StubTicker) Fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.ch <- now:
	default:
	}
}

func (t *StubTicker) advance(d time.Duration, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.elapsed += d
	if t.elapsed < t.period {
		return
	}
	t.elapsed = t.elapsed % t.period
	select {
	case t.ch <- now:
	default:
		// Receiver is behind; missed ticks coalesce.
	}
}

// StubIDGenerator returns sequential IDs: "run-1", "run-2", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("run-%d", g.counter)
}

var _ bcup.Clock = (*StubClock)(nil)
var _ bcup.IDGenerator = (*StubIDGenerator)(nil)
