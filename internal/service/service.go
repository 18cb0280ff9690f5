// Package service wires the scheduler, the model manager and the cache into
// one process and exposes the operations the HTTP layer needs.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"servecore/internal/cache"
	"servecore/internal/config"
	"servecore/internal/manager"
	"servecore/internal/registry"
	"servecore/internal/scheduler"
	"servecore/pkg/types"
)

// Service owns the three core components.
type Service struct {
	sched   *scheduler.Scheduler
	models  *manager.Manager
	cache   *cache.Cache
	primary *cache.SQLiteBackend
	warmUp  []string
	log     zerolog.Logger
	started time.Time
}

// Options are injection points for tests; zero values use production wiring.
type Options struct {
	Source manager.ModelSource
	// Primary overrides the cache backend built from CacheDB.
	Primary cache.Backend
}

// New builds a Service from cfg. The cache degrades to its in-process tier
// when the database cannot be opened.
func New(cfg config.Config, log zerolog.Logger, opts Options) (*Service, error) {
	cfg = config.Merge(config.Default(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Service{log: log.With().Str("component", "service").Logger(), started: time.Now(), warmUp: cfg.WarmUp}

	catalog, err := Catalog(cfg)
	if err != nil {
		return nil, err
	}

	primary := opts.Primary
	if primary == nil && cfg.CacheDB != "" {
		db, err := cache.OpenSQLite(cfg.CacheDB)
		if err != nil {
			s.log.Warn().Str("event", "cache_db_unavailable").Str("path", cfg.CacheDB).Err(err).
				Msg("running cache on in-process fallback only")
		} else {
			s.primary = db
			primary = db
		}
	}
	s.cache = cache.New(cache.Config{
		Primary:       primary,
		Namespaces:    namespaces(cfg),
		SweepInterval: cfg.CacheSweepInterval.D(),
		Logger:        log,
	})

	s.models = manager.NewWithConfig(manager.ManagerConfig{
		Catalog:           catalog,
		MaxModelsInMemory: cfg.MaxModelsInMemory,
		IdleTimeout:       cfg.IdleTimeout.D(),
		SweepInterval:     cfg.SweepInterval.D(),
		Source:            opts.Source,
		StatePath:         cfg.StatePath,
		Logger:            log,
	})

	mux := scheduler.NewMux()
	s.registerHandlers(mux)
	for name, cc := range cfg.Categories {
		if len(cc.Command) > 0 {
			mux.Handle(name, &scheduler.ProcessExecutor{
				Path:   cc.Command[0],
				Args:   cc.Command[1:],
				Logger: log,
			})
		}
	}
	s.sched = scheduler.New(scheduler.Config{
		Policies:   policies(cfg),
		MaxWorkers: cfg.MaxWorkers,
		Executor:   mux,
		Logger:     log,
	})
	s.log.Info().Str("event", "service_ready").Int("models", len(catalog)).
		Strs("categories", mux.Categories()).Str("cache_primary", s.cache.Stats().Primary).Msg("")
	return s, nil
}

// Catalog resolves the model catalog from configuration and ModelsDir.
func Catalog(cfg config.Config) ([]types.ModelSpec, error) {
	catalog := cfg.Models
	if cfg.ModelsDir != "" {
		found, err := registry.LoadDir(cfg.ModelsDir)
		if err != nil {
			return nil, fmt.Errorf("scan models dir: %w", err)
		}
		catalog = registry.Merge(catalog, found)
	}
	return catalog, nil
}

func policies(cfg config.Config) map[string]scheduler.Policy {
	out := scheduler.DefaultPolicies()
	for name, cc := range cfg.Categories {
		out[name] = scheduler.Policy{MaxConcurrent: cc.MaxConcurrent, Timeout: cc.Timeout.D()}
	}
	return out
}

func namespaces(cfg config.Config) map[string]cache.NamespacePolicy {
	out := cache.DefaultNamespaces()
	for name, nc := range cfg.Namespaces {
		out[name] = cache.NamespacePolicy{TTL: nc.TTL.D(), Prefix: nc.Prefix, MaxFallback: nc.MaxFallback}
	}
	return out
}

// Start warms up the configured models plus those resident at the last
// shutdown. It returns once warm-up has finished or ctx is done.
func (s *Service) Start(ctx context.Context) {
	names := append([]string(nil), s.warmUp...)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range s.models.PreviouslyResident() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return
	}
	s.models.WarmUpModels(ctx, names)
}

// Close stops the scheduler, releases models and closes the cache database.
func (s *Service) Close() {
	s.sched.Close()
	_ = s.models.Close()
	s.cache.Close()
	if s.primary != nil {
		if err := s.primary.Close(); err != nil {
			s.log.Warn().Str("event", "cache_db_close_error").Err(err).Msg("")
		}
	}
}

func (s *Service) Scheduler() *scheduler.Scheduler { return s.sched }
func (s *Service) Models() *manager.Manager        { return s.models }
func (s *Service) Cache() *cache.Cache             { return s.cache }

// ListModels returns the catalog.
func (s *Service) ListModels() []types.ModelSpec { return s.models.ListModels() }

// Ready reports whether the service accepts work.
func (s *Service) Ready() bool { return s.models.Ready() }

// Status aggregates the component snapshots.
func (s *Service) Status() types.StatusResponse {
	now := time.Now()
	return types.StatusResponse{
		Scheduler:      s.sched.Stats(),
		Models:         s.models.Stats(),
		Cache:          s.cache.Stats(),
		UptimeSeconds:  int64(now.Sub(s.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

// LoadModel loads (or reloads) a catalog model.
func (s *Service) LoadModel(ctx context.Context, name string, force bool) (types.LoadResponse, error) {
	if _, err := s.models.LoadModel(ctx, name, force); err != nil {
		return types.LoadResponse{Model: name}, err
	}
	st := s.models.Stats().Models[name]
	return types.LoadResponse{Model: name, Loaded: st.IsLoaded, Degraded: st.Degraded}, nil
}

// UnloadModel releases a resident model.
func (s *Service) UnloadModel(name string) bool { return s.models.UnloadModel(name) }

// WarmUp loads names in parallel, returning how many succeeded.
func (s *Service) WarmUp(ctx context.Context, names []string) int {
	return s.models.WarmUpModels(ctx, names)
}

// RunTask runs payload under category and waits for the result.
func (s *Service) RunTask(ctx context.Context, category string, payload json.RawMessage) (types.TaskResponse, error) {
	start := time.Now()
	fut := s.sched.Submit(category, payload)
	res, err := fut.Wait(ctx)
	if err != nil {
		return types.TaskResponse{ID: fut.ID(), Category: category}, err
	}
	return types.TaskResponse{
		ID:         fut.ID(),
		Category:   category,
		Result:     res,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

// ClearCache empties one cache namespace.
func (s *Service) ClearCache(ctx context.Context, namespace string) bool {
	return s.cache.ClearNamespace(ctx, namespace)
}
