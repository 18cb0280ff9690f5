package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Tiered serves one namespace: the primary first, the fallback store when the
// primary errors. It implements Backend and never returns an error.
type Tiered struct {
	namespace string
	primary   Backend
	fallback  *MemoryBackend
	log       zerolog.Logger

	failures    *atomic.Uint64 // shared across namespaces
	fallbackOps atomic.Uint64
	degraded    atomic.Bool
}

func newTiered(namespace string, primary Backend, maxFallback int, failures *atomic.Uint64, log zerolog.Logger) *Tiered {
	return &Tiered{
		namespace: namespace,
		primary:   primary,
		fallback:  NewMemoryBackend(maxFallback),
		log:       log,
		failures:  failures,
	}
}

// usePrimary runs op against the primary. It reports false when the caller
// must retry on the fallback tier.
func (t *Tiered) usePrimary(op string, fn func(Backend) error) bool {
	if t.primary == nil {
		return false
	}
	if err := fn(t.primary); err != nil {
		t.failures.Add(1)
		backendFailures.WithLabelValues(op).Inc()
		if !t.degraded.Swap(true) {
			t.log.Warn().Str("event", "cache_degraded").Str("namespace", t.namespace).Str("op", op).
				Err(err).Msg(ErrDegraded.Error())
		} else {
			t.log.Debug().Str("event", "cache_primary_error").Str("namespace", t.namespace).Str("op", op).Err(err).Msg("")
		}
		return false
	}
	if t.degraded.Swap(false) {
		t.log.Info().Str("event", "cache_recovered").Str("namespace", t.namespace).Msg("primary backend reachable again")
	}
	requestsTotal.WithLabelValues(t.namespace, op, "primary").Inc()
	return true
}

func (t *Tiered) onFallback(op string) {
	t.fallbackOps.Add(1)
	requestsTotal.WithLabelValues(t.namespace, op, "fallback").Inc()
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	var ok bool
	if t.usePrimary("get", func(b Backend) (err error) {
		v, ok, err = b.Get(ctx, key)
		return err
	}) {
		return v, ok, nil
	}
	t.onFallback("get")
	return t.fallback.Get(ctx, key)
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if t.usePrimary("set", func(b Backend) error { return b.Set(ctx, key, value, ttl) }) {
		return nil
	}
	t.onFallback("set")
	return t.fallback.Set(ctx, key, value, ttl)
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	// the key may live in either tier after an outage
	_ = t.fallback.Delete(ctx, key)
	if t.usePrimary("delete", func(b Backend) error { return b.Delete(ctx, key) }) {
		return nil
	}
	t.onFallback("delete")
	return nil
}

// SetMany is atomic on primaries implementing BatchSetter and on the fallback.
func (t *Tiered) SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if t.usePrimary("mset", func(b Backend) error {
		if bs, ok := b.(BatchSetter); ok {
			return bs.SetMany(ctx, items, ttl)
		}
		for k, v := range items {
			if err := b.Set(ctx, k, v, ttl); err != nil {
				return err
			}
		}
		return nil
	}) {
		return nil
	}
	t.onFallback("mset")
	return t.fallback.SetMany(ctx, items, ttl)
}

// DeletePrefix empties the fallback store and deletes prefix on the primary
// when it supports prefix deletion.
func (t *Tiered) DeletePrefix(ctx context.Context, prefix string) error {
	t.fallback.Clear()
	if t.primary == nil {
		return nil
	}
	pd, ok := t.primary.(PrefixDeleter)
	if !ok {
		t.log.Debug().Str("event", "cache_clear_unsupported").Str("namespace", t.namespace).Msg("primary cannot delete by prefix")
		return nil
	}
	t.usePrimary("clear", func(Backend) error { return pd.DeletePrefix(ctx, prefix) })
	return nil
}
