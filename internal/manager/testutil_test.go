package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"servecore/pkg/types"
)

// tinySpec returns a 2-in/2-out catalog entry with the given priority.
func tinySpec(name string, priority int) types.ModelSpec {
	return types.ModelSpec{Name: name, InputShape: []int{2}, OutputSize: 2, Priority: priority}
}

// countingSource synthesizes models and counts fetches per name. When gate is
// non-nil every fetch blocks until it is closed; delay adds a fixed fetch
// latency. With track set, returned models count their Close calls in closes.
type countingSource struct {
	mu     sync.Mutex
	counts map[string]int
	total  atomic.Int64
	gate   chan struct{}
	delay  time.Duration
	err    error
	track  bool
	closes atomic.Int64
}

func newCountingSource() *countingSource {
	return &countingSource{counts: map[string]int{}}
}

func (s *countingSource) Fetch(ctx context.Context, spec types.ModelSpec) (Model, error) {
	s.mu.Lock()
	s.counts[spec.Name]++
	s.mu.Unlock()
	s.total.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	h, err := synthesizeStandIn(spec)
	if err != nil || !s.track {
		return h, err
	}
	return &trackedModel{Model: h, closes: &s.closes}, nil
}

// trackedModel counts Close calls on the wrapped model.
type trackedModel struct {
	Model
	closes *atomic.Int64
}

func (t *trackedModel) Close() error {
	t.closes.Add(1)
	return t.Model.Close()
}

func (s *countingSource) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[name]
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newTestManager builds a manager without the background sweeper and with a
// fake clock; it is closed when the test ends.
func newTestManager(t *testing.T, src ModelSource, k int, specs ...types.ModelSpec) (*Manager, *fakeClock) {
	t.Helper()
	m := NewWithConfig(ManagerConfig{
		Catalog:           specs,
		MaxModelsInMemory: k,
		IdleTimeout:       -1,
		Source:            src,
		Logger:            zerolog.Nop(),
	})
	clk := newFakeClock()
	m.now = clk.Now
	t.Cleanup(func() { _ = m.Close() })
	return m, clk
}

func mustLoad(t *testing.T, m *Manager, name string) Model {
	t.Helper()
	h, err := m.LoadModel(context.Background(), name, false)
	if err != nil {
		t.Fatalf("LoadModel(%s): %v", name, err)
	}
	return h
}

func isLoaded(m *Manager, name string) bool {
	return m.Stats().Models[name].IsLoaded
}
