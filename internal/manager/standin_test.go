package manager

import (
	"context"
	"errors"
	"testing"

	"servecore/pkg/types"
)

func TestStandInIsDeterministic(t *testing.T) {
	spec := types.ModelSpec{Name: "disease-classifier", InputShape: []int{4, 4}, OutputSize: 3}
	a, err := synthesizeStandIn(spec)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	b, _ := synthesizeStandIn(spec)
	in := make([]float32, 16)
	for i := range in {
		in[i] = float32(i) / 16
	}
	oa, _ := a.Predict(context.Background(), in)
	ob, _ := b.Predict(context.Background(), in)
	for i := range oa {
		if oa[i] != ob[i] {
			t.Fatalf("stand-ins differ at %d: %v vs %v", i, oa, ob)
		}
	}
	other, _ := synthesizeStandIn(types.ModelSpec{Name: "crop-detector", InputShape: []int{4, 4}, OutputSize: 3})
	oc, _ := other.Predict(context.Background(), in)
	same := true
	for i := range oa {
		if oa[i] != oc[i] {
			same = false
		}
	}
	if same {
		t.Fatalf("different names should produce different stand-ins")
	}
}

func TestUnavailableArtifactLoadsDegraded(t *testing.T) {
	src := SourceFunc(func(_ context.Context, spec types.ModelSpec) (Model, error) {
		return nil, ErrSourceUnavailable
	})
	m, _ := newTestManager(t, src, 1, tinySpec("a", 1))
	h := mustLoad(t, m, "a")
	if h.OutputSize() != 2 {
		t.Fatalf("stand-in has wrong shape")
	}
	if !m.Stats().Models["a"].Degraded {
		t.Fatalf("expected degraded flag")
	}
}

func TestFetchErrorFallsBackToStandIn(t *testing.T) {
	src := newCountingSource()
	src.err = errors.New("corrupt artifact")
	m, _ := newTestManager(t, src, 1, tinySpec("a", 1))
	mustLoad(t, m, "a")
	if !m.Stats().Models["a"].Degraded {
		t.Fatalf("expected degraded after fetch error")
	}
}

func TestModelLoadErrorWhenSynthesisFails(t *testing.T) {
	src := SourceFunc(func(_ context.Context, spec types.ModelSpec) (Model, error) {
		return nil, ErrSourceUnavailable
	})
	m, _ := newTestManager(t, src, 1, types.ModelSpec{Name: "shapeless"})
	_, err := m.LoadModel(context.Background(), "shapeless", false)
	if !IsModelLoadError(err) {
		t.Fatalf("expected ModelLoadError, got %v", err)
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("ModelLoadError should wrap the source error: %v", err)
	}
	if isLoaded(m, "shapeless") {
		t.Fatalf("failed load must not leave a resident entry")
	}
}
