package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"servecore/pkg/types"
)

type Manager struct {
	mu           sync.RWMutex
	catalog      map[string]types.ModelSpec
	order        []string
	entries      map[string]*entry
	maxResident  int
	idleTimeout  time.Duration
	sweepEvery   time.Duration
	fetchTimeout time.Duration
	source       ModelSource
	optimizer    Optimizer
	statePath    string
	log          zerolog.Logger
	publisher    EventPublisher

	// in-flight loads keyed by model name
	flight singleflight.Group

	loadsTotal     uint64
	evictionsTotal uint64

	now       func() time.Time
	startTime time.Time
	closed    bool
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New constructs a Manager over catalog with the given resident cap.
func New(catalog []types.ModelSpec, maxModelsInMemory int) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(ManagerConfig{
		Catalog:           catalog,
		MaxModelsInMemory: maxModelsInMemory,
	})
}

// SetEventPublisher installs p; nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.publisher = noopPublisher{}
		return
	}
	m.publisher = p
}

func (m *Manager) publish(name, model string, fields map[string]any) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	if fields == nil {
		fields = map[string]any{}
	}
	p.Publish(Event{Name: name, ModelID: model, Fields: fields})
}

// Ready reports whether the manager accepts loads.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed
}

// ListModels returns the catalog in configuration order.
func (m *Manager) ListModels() []types.ModelSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a copy to avoid external mutation
	out := make([]types.ModelSpec, 0, len(m.order))
	for _, name := range m.order {
		s := m.catalog[name]
		s.InputShape = append([]int(nil), s.InputShape...)
		out = append(out, s)
	}
	return out
}

// Close stops the idle sweeper, records the resident set when a state path
// is configured and releases every resident model.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)
		<-m.done
		m.saveResidentState()
		m.mu.Lock()
		m.closed = true
		var handles []Model
		for _, e := range m.entries {
			if e.resident() {
				handles = append(handles, e.handle)
				e.handle = nil
			}
		}
		m.mu.Unlock()
		for _, h := range handles {
			_ = h.Close()
		}
		residentGauge.Set(0)
		m.log.Info().Str("event", "closed").Int("released", len(handles)).Msg("model manager closed")
	})
	return nil
}
