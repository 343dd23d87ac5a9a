package bcup

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval and timer creation so the scheduler is
// deterministic in tests.
type Clock interface {
	Now() time.Time

	// NewTicker returns a ticker that fires every d. Like time.Ticker, a
	// ticker whose channel is not drained coalesces missed ticks into at
	// most one pending tick.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock uses the actual wall clock and time.Ticker.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
