package manager

import (
	"context"
	"testing"

	"servecore/pkg/types"
)

func TestWarmUpModelsSkipsFailures(t *testing.T) {
	bad := types.ModelSpec{Name: "bad", Priority: 1} // no shape: stand-in cannot be built
	m, _ := newTestManager(t, newCountingSource(), 3, tinySpec("a", 1), tinySpec("b", 2), bad)
	n := m.WarmUpModels(context.Background(), []string{"a", "bad", "missing", "b"})
	if n != 2 {
		t.Fatalf("expected 2 models warmed, got %d", n)
	}
	if !isLoaded(m, "a") || !isLoaded(m, "b") {
		t.Fatalf("expected a and b resident")
	}
}

func TestWarmUpMoreThanCapacity(t *testing.T) {
	m, _ := newTestManager(t, newCountingSource(), 2,
		tinySpec("a", 1), tinySpec("b", 1), tinySpec("c", 1), tinySpec("d", 1))
	if n := m.WarmUpModels(context.Background(), []string{"a", "b", "c", "d"}); n != 4 {
		t.Fatalf("each load should succeed, got %d", n)
	}
	if r := m.Stats().ResidentCount; r != 2 {
		t.Fatalf("expected cap of 2 resident, got %d", r)
	}
}
