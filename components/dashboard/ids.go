package dashboard

import (
	"fmt"
	"sync"
	"time"
)

// Clock returns the current time. Tests swap it for a fixed sequence.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// IDGenerator produces time-based identifiers. The millisecond token is
// strictly increasing per generator so a token is never handed out twice.
type IDGenerator struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewIDGenerator builds a generator; a nil clock uses time.Now.
func NewIDGenerator(clock Clock) *IDGenerator {
	if clock == nil {
		clock = systemClock
	}
	return &IDGenerator{clock: clock}
}

// ConfigID returns a new dashboard-<epoch-ms> identifier.
func (g *IDGenerator) ConfigID() string {
	return fmt.Sprintf("dashboard-%d", g.token())
}

// ItemID returns item-<epoch-ms>, with an optional -suffix disambiguator.
func (g *IDGenerator) ItemID(suffix string) string {
	id := fmt.Sprintf("item-%d", g.token())
	if suffix != "" {
		id += "-" + suffix
	}
	return id
}

func (g *IDGenerator) token() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.clock().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}
