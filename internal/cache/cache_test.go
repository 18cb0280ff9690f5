package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

// downBackend fails every call, like an unreachable server.
type downBackend struct{}

func (downBackend) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (downBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errDown
}
func (downBackend) Delete(context.Context, string) error { return errDown }

func newSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newCache(t *testing.T, primary Backend, ns map[string]NamespacePolicy) *Cache {
	t.Helper()
	c := New(Config{Primary: primary, Namespaces: ns, SweepInterval: -1, Logger: zerolog.Nop()})
	t.Cleanup(c.Close)
	return c
}

func TestTTLExpiry(t *testing.T) {
	for name, primary := range map[string]Backend{"sqlite": newSQLite(t), "fallback-only": nil} {
		t.Run(name, func(t *testing.T) {
			c := newCache(t, primary, nil)
			ctx := context.Background()
			require.True(t, c.Set(ctx, NamespacePredictions, "k", []byte("v"), 100*time.Millisecond))

			v, ok := c.Get(ctx, NamespacePredictions, "k")
			require.True(t, ok)
			assert.Equal(t, []byte("v"), v)

			time.Sleep(150 * time.Millisecond)
			_, ok = c.Get(ctx, NamespacePredictions, "k")
			assert.False(t, ok, "entry should have expired")
		})
	}
}

func TestDefaultTTLApplied(t *testing.T) {
	c := newCache(t, nil, map[string]NamespacePolicy{"short": {TTL: 50 * time.Millisecond, MaxFallback: 10}})
	ctx := context.Background()
	require.True(t, c.Set(ctx, "short", "k", []byte("v"), 0))
	_, ok := c.Get(ctx, "short", "k")
	require.True(t, ok)
	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get(ctx, "short", "k")
	assert.False(t, ok)
}

func TestFailingPrimaryServedByFallback(t *testing.T) {
	c := newCache(t, downBackend{}, nil)
	ctx := context.Background()

	require.True(t, c.Set(ctx, NamespaceFeatures, "f1", []byte("x"), time.Minute))
	v, ok := c.Get(ctx, NamespaceFeatures, "f1")
	require.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	st := c.Stats()
	assert.Equal(t, "custom", st.Primary)
	assert.EqualValues(t, 2, st.PrimaryFailures)
	assert.EqualValues(t, 2, st.FallbackOps)
	assert.Equal(t, 1, st.Namespaces[NamespaceFeatures].FallbackEntries)
}

func TestClosedSQLiteFallsBack(t *testing.T) {
	b := newSQLite(t)
	c := newCache(t, b, nil)
	ctx := context.Background()
	require.True(t, c.Set(ctx, NamespaceAnalysis, "before", []byte("1"), 0))
	require.NoError(t, b.Close())

	require.True(t, c.Set(ctx, NamespaceAnalysis, "after", []byte("2"), 0))
	v, ok := c.Get(ctx, NamespaceAnalysis, "after")
	require.True(t, ok)
	assert.Equal(t, []byte("2"), v)

	// written to the primary before the outage, not visible from the fallback
	_, ok = c.Get(ctx, NamespaceAnalysis, "before")
	assert.False(t, ok)
	assert.Equal(t, "sqlite", c.Stats().Primary)
	assert.NotZero(t, c.Stats().PrimaryFailures)
}

func TestFallbackEvictsOldestInsertion(t *testing.T) {
	c := newCache(t, downBackend{}, map[string]NamespacePolicy{"tiny": {TTL: time.Minute, MaxFallback: 2}})
	ctx := context.Background()
	for _, k := range []string{"k1", "k2", "k3"} {
		require.True(t, c.Set(ctx, "tiny", k, []byte(k), 0))
	}
	_, ok := c.Get(ctx, "tiny", "k1")
	assert.False(t, ok, "k1 should have been evicted")
	for _, k := range []string{"k2", "k3"} {
		v, ok := c.Get(ctx, "tiny", k)
		require.True(t, ok, k)
		assert.Equal(t, []byte(k), v)
	}
}

func TestUnknownNamespace(t *testing.T) {
	c := newCache(t, nil, nil)
	ctx := context.Background()
	assert.False(t, c.Set(ctx, "nope", "k", []byte("v"), 0))
	_, ok := c.Get(ctx, "nope", "k")
	assert.False(t, ok)
	assert.False(t, c.MSet(ctx, "nope", map[string][]byte{"a": nil}, 0))
	assert.False(t, c.ClearNamespace(ctx, "nope"))
	c.Delete(ctx, "nope", "k")
	assert.EqualValues(t, 1, c.Stats().Misses)
}

func TestNamespacesAreIsolated(t *testing.T) {
	c := newCache(t, newSQLite(t), nil)
	ctx := context.Background()
	require.True(t, c.Set(ctx, NamespacePredictions, "same", []byte("p"), 0))
	require.True(t, c.Set(ctx, NamespaceFeatures, "same", []byte("f"), 0))

	require.True(t, c.ClearNamespace(ctx, NamespacePredictions))
	_, ok := c.Get(ctx, NamespacePredictions, "same")
	assert.False(t, ok)
	v, ok := c.Get(ctx, NamespaceFeatures, "same")
	require.True(t, ok)
	assert.Equal(t, []byte("f"), v)
}

func TestMSetAndDelete(t *testing.T) {
	c := newCache(t, newSQLite(t), nil)
	ctx := context.Background()
	require.True(t, c.MSet(ctx, NamespaceModels, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, 0))
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		v, ok := c.Get(ctx, NamespaceModels, k)
		require.True(t, ok, k)
		assert.Equal(t, want, string(v))
	}
	c.Delete(ctx, NamespaceModels, "a")
	_, ok := c.Get(ctx, NamespaceModels, "a")
	assert.False(t, ok)
	assert.EqualValues(t, 2, c.Stats().Hits)
}

func TestMSetFallsBackAsABatch(t *testing.T) {
	c := newCache(t, downBackend{}, nil)
	ctx := context.Background()
	require.True(t, c.MSet(ctx, NamespaceFeatures, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, 0))
	assert.Equal(t, 2, c.Stats().Namespaces[NamespaceFeatures].FallbackEntries)
	assert.EqualValues(t, 1, c.Stats().PrimaryFailures)
}

func TestJSONHelpers(t *testing.T) {
	c := newCache(t, nil, nil)
	ctx := context.Background()
	type pred struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	require.NoError(t, c.SetJSON(ctx, NamespacePredictions, "img1", pred{"rust", 0.9}, 0))
	var got pred
	ok, err := c.GetJSON(ctx, NamespacePredictions, "img1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pred{"rust", 0.9}, got)

	require.True(t, c.Set(ctx, NamespacePredictions, "bad", []byte("{"), 0))
	ok, err = c.GetJSON(ctx, NamespacePredictions, "bad", &got)
	assert.False(t, ok)
	assert.Error(t, err)
	_, present := c.Get(ctx, NamespacePredictions, "bad")
	assert.False(t, present, "corrupt entry should be dropped")

	assert.ErrorIs(t, c.SetJSON(ctx, "nope", "k", 1, 0), ErrNotStored)
}

func TestSweepRemovesExpired(t *testing.T) {
	b := newSQLite(t)
	c := newCache(t, b, nil)
	ctx := context.Background()
	require.True(t, c.Set(ctx, NamespacePredictions, "short", []byte("x"), 20*time.Millisecond))
	require.True(t, c.Set(ctx, NamespacePredictions, "long", []byte("y"), time.Hour))
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 1, c.Sweep(ctx))
	_, ok := c.Get(ctx, NamespacePredictions, "long")
	assert.True(t, ok)
}

func TestDefaultNamespaces(t *testing.T) {
	ns := DefaultNamespaces()
	assert.Equal(t, NamespacePolicy{TTL: time.Hour, Prefix: "pred:", MaxFallback: 1000}, ns[NamespacePredictions])
	assert.Equal(t, NamespacePolicy{TTL: 30 * time.Minute, Prefix: "feat:", MaxFallback: 500}, ns[NamespaceFeatures])
	assert.Equal(t, NamespacePolicy{TTL: 6 * time.Hour, Prefix: "model:", MaxFallback: 50}, ns[NamespaceModels])
	assert.Equal(t, NamespacePolicy{TTL: 15 * time.Minute, Prefix: "analysis:", MaxFallback: 200}, ns[NamespaceAnalysis])
	c := newCache(t, nil, nil)
	assert.Equal(t, []string{"analysis", "features", "models", "predictions"}, c.Namespaces())
}
