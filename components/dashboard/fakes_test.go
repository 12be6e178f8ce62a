package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	getErr  error
	setErr  error
	lastKey string
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return append([]byte(nil), v...), ok, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.lastKey = key
	m.data[key] = append([]byte(nil), value...)
	return nil
}

var errBackendDown = errors.New("backend down")

// steppingClock returns start, start+step, start+2*step, ...
func steppingClock(start time.Time, step time.Duration) Clock {
	var (
		mu  sync.Mutex
		cur = start.Add(-step)
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var testEpoch = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore() (*CollectionStore, *memKV) {
	kv := newMemKV()
	store := NewCollectionStore(kv, StoreOptions{Clock: steppingClock(testEpoch, time.Second)})
	return store, kv
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
	last   map[string]any
}

func (r *recordingTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.last = payload
}

type recordingHook struct {
	events []ConfigEvent
	err    error
}

func (h *recordingHook) ConfigChanged(ctx context.Context, event ConfigEvent) error {
	h.events = append(h.events, event)
	return h.err
}

type staticData struct {
	calls int
	data  ChartData
	err   error
}

func (s *staticData) FetchSeries(ctx context.Context, spec ChartSpec) (ChartData, error) {
	s.calls++
	return s.data, s.err
}
