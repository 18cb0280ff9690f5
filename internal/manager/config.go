package manager

import (
	"time"

	"github.com/rs/zerolog"

	"servecore/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxModelsInMemory = 3
	defaultIdleTimeout       = 30 * time.Minute
	defaultSweepInterval     = time.Minute
	defaultFetchTimeout      = 2 * time.Minute
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Catalog           []types.ModelSpec
	MaxModelsInMemory int
	// IdleTimeout unloads models not accessed for this long. Negative disables the sweeper.
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	// FetchTimeout bounds a single artifact fetch.
	FetchTimeout time.Duration
	// Source materializes artifacts. Nil uses DefaultSource().
	Source ModelSource
	// Optimizer runs on models flagged Quantized. Nil uses Int8Quantizer.
	Optimizer Optimizer
	// StatePath, if set, records the resident set on Close for warm-up on restart.
	StatePath string
	Logger    zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig and starts its idle sweeper.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		catalog:      make(map[string]types.ModelSpec, len(cfg.Catalog)),
		entries:      make(map[string]*entry, len(cfg.Catalog)),
		maxResident:  cfg.MaxModelsInMemory,
		idleTimeout:  cfg.IdleTimeout,
		sweepEvery:   cfg.SweepInterval,
		fetchTimeout: cfg.FetchTimeout,
		source:       cfg.Source,
		optimizer:    cfg.Optimizer,
		statePath:    cfg.StatePath,
		log:          cfg.Logger.With().Str("component", "manager").Logger(),
		publisher:    noopPublisher{},
		now:          time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, s := range cfg.Catalog {
		if _, dup := m.catalog[s.Name]; !dup {
			m.order = append(m.order, s.Name)
		}
		m.catalog[s.Name] = s
	}
	// Apply defaults if unset
	if m.maxResident <= 0 {
		m.maxResident = defaultMaxModelsInMemory
	}
	if m.idleTimeout == 0 {
		m.idleTimeout = defaultIdleTimeout
	}
	if m.sweepEvery <= 0 {
		m.sweepEvery = defaultSweepInterval
	}
	if m.fetchTimeout <= 0 {
		m.fetchTimeout = defaultFetchTimeout
	}
	if m.source == nil {
		m.source = DefaultSource()
	}
	if m.optimizer == nil {
		m.optimizer = Int8Quantizer{}
	}
	m.startTime = time.Now()
	if m.idleTimeout > 0 {
		go m.sweepLoop()
	} else {
		close(m.done)
	}
	return m
}
