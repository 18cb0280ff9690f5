package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"servecore/pkg/types"
)

// Cache is the namespaced front over per-namespace Tiered backends. Safe for
// concurrent use.
type Cache struct {
	primary    Backend
	policies   map[string]NamespacePolicy
	tiers      map[string]*Tiered
	log        zerolog.Logger
	sweepEvery time.Duration

	failures atomic.Uint64
	hits     atomic.Uint64
	misses   atomic.Uint64

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New builds a Cache and starts its expiry sweeper. The caller keeps
// ownership of cfg.Primary.
func New(cfg Config) *Cache {
	ns := cfg.Namespaces
	if ns == nil {
		ns = DefaultNamespaces()
	}
	c := &Cache{
		primary:    cfg.Primary,
		policies:   make(map[string]NamespacePolicy, len(ns)),
		tiers:      make(map[string]*Tiered, len(ns)),
		log:        cfg.Logger.With().Str("component", "cache").Logger(),
		sweepEvery: cfg.SweepInterval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for name, p := range ns {
		p = normalizeNamespace(name, p)
		c.policies[name] = p
		c.tiers[name] = newTiered(name, cfg.Primary, p.MaxFallback, &c.failures, c.log)
	}
	if c.sweepEvery == 0 {
		c.sweepEvery = defaultSweepInterval
	}
	if c.sweepEvery > 0 {
		go c.sweepLoop()
	} else {
		close(c.done)
	}
	return c
}

// Close stops the sweeper.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

func (c *Cache) tier(op, ns string) (*Tiered, NamespacePolicy, bool) {
	t, ok := c.tiers[ns]
	if !ok {
		c.log.Warn().Str("event", "unknown_namespace").Str("namespace", ns).Str("op", op).Msg("")
		return nil, NamespacePolicy{}, false
	}
	return t, c.policies[ns], true
}

// Set stores value under key. ttl <= 0 uses the namespace default. It reports
// false only for an unknown namespace.
func (c *Cache) Set(ctx context.Context, ns, key string, value []byte, ttl time.Duration) bool {
	t, p, ok := c.tier("set", ns)
	if !ok {
		return false
	}
	if ttl <= 0 {
		ttl = p.TTL
	}
	_ = t.Set(ctx, p.Prefix+key, value, ttl)
	return true
}

// Get returns the live value for key.
func (c *Cache) Get(ctx context.Context, ns, key string) ([]byte, bool) {
	t, p, ok := c.tier("get", ns)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	v, found, _ := t.Get(ctx, p.Prefix+key)
	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, found
}

// Delete removes key from both tiers.
func (c *Cache) Delete(ctx context.Context, ns, key string) {
	if t, p, ok := c.tier("delete", ns); ok {
		_ = t.Delete(ctx, p.Prefix+key)
	}
}

// MSet stores every entry of items with one ttl, atomically when the serving
// tier supports batches.
func (c *Cache) MSet(ctx context.Context, ns string, items map[string][]byte, ttl time.Duration) bool {
	t, p, ok := c.tier("mset", ns)
	if !ok {
		return false
	}
	if len(items) == 0 {
		return true
	}
	if ttl <= 0 {
		ttl = p.TTL
	}
	prefixed := make(map[string][]byte, len(items))
	for k, v := range items {
		prefixed[p.Prefix+k] = v
	}
	_ = t.SetMany(ctx, prefixed, ttl)
	return true
}

// ClearNamespace removes every entry of ns.
func (c *Cache) ClearNamespace(ctx context.Context, ns string) bool {
	t, p, ok := c.tier("clear", ns)
	if !ok {
		return false
	}
	_ = t.DeletePrefix(ctx, p.Prefix)
	c.log.Info().Str("event", "namespace_cleared").Str("namespace", ns).Msg("")
	return true
}

// Namespaces returns the configured namespace names, sorted.
func (c *Cache) Namespaces() []string {
	out := make([]string, 0, len(c.policies))
	for n := range c.policies {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Stats returns counters and per-namespace occupancy.
func (c *Cache) Stats() types.CacheStats {
	st := types.CacheStats{
		Primary:         backendName(c.primary),
		PrimaryFailures: c.failures.Load(),
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		Namespaces:      make(map[string]types.NamespaceStats, len(c.tiers)),
	}
	for name, t := range c.tiers {
		p := c.policies[name]
		st.FallbackOps += t.fallbackOps.Load()
		st.Namespaces[name] = types.NamespaceStats{
			Prefix:          p.Prefix,
			TTLMS:           p.TTL.Milliseconds(),
			FallbackEntries: t.fallback.Len(),
			MaxFallback:     t.fallback.Max(),
		}
	}
	return st
}
