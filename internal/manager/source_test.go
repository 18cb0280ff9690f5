package manager

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"servecore/pkg/types"
)

func writeArtifact(t *testing.T, dir, name string, weights, bias []float32) string {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodeDense(&buf, weights, bias); err != nil {
		t.Fatalf("encode: %v", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestFileSourceReadsArtifact(t *testing.T) {
	p := writeArtifact(t, t.TempDir(), "m.bin", []float32{1, 0, 0, 1}, []float32{0, 0})
	spec := types.ModelSpec{Name: "m", Path: p, InputShape: []int{2}, OutputSize: 2}
	h, err := FileSource{}.Fetch(context.Background(), spec)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	out, err := h.Predict(context.Background(), []float32{5, 0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if out[0] <= out[1] {
		t.Fatalf("identity weights should favour the first output: %v", out)
	}
}

func TestFileSourceMissingIsUnavailable(t *testing.T) {
	spec := types.ModelSpec{Name: "m", Path: filepath.Join(t.TempDir(), "nope.bin"), InputShape: []int{2}, OutputSize: 2}
	_, err := FileSource{}.Fetch(context.Background(), spec)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	_, err = FileSource{}.Fetch(context.Background(), types.ModelSpec{Name: "m"})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("empty path: expected ErrSourceUnavailable, got %v", err)
	}
}

func TestFileSourceRejectsWrongSize(t *testing.T) {
	p := writeArtifact(t, t.TempDir(), "m.bin", []float32{1, 2, 3}, nil)
	spec := types.ModelSpec{Name: "m", Path: p, InputShape: []int{2}, OutputSize: 2}
	if _, err := (FileSource{}).Fetch(context.Background(), spec); err == nil || errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected a decode error, got %v", err)
	}
	p = writeArtifact(t, t.TempDir(), "big.bin", make([]float32, 6), []float32{1})
	spec.Path = p
	if _, err := (FileSource{}).Fetch(context.Background(), spec); err == nil {
		t.Fatalf("expected trailing data to be rejected")
	}
}

func TestHTTPSource(t *testing.T) {
	var body bytes.Buffer
	_ = EncodeDense(&body, []float32{0, 1, 1, 0}, []float32{0, 0})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/m.bin" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body.Bytes())
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client())
	spec := types.ModelSpec{Name: "m", Path: srv.URL + "/m.bin", InputShape: []int{2}, OutputSize: 2}
	h, err := src.Fetch(context.Background(), spec)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if h.InputSize() != 2 || h.OutputSize() != 2 {
		t.Fatalf("unexpected shape %d->%d", h.InputSize(), h.OutputSize())
	}

	spec.Path = srv.URL + "/missing.bin"
	if _, err := src.Fetch(context.Background(), spec); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable on 404, got %v", err)
	}
}

func TestMultiSourceDispatch(t *testing.T) {
	var got []string
	record := func(tag string) ModelSource {
		return SourceFunc(func(_ context.Context, spec types.ModelSpec) (Model, error) {
			got = append(got, tag)
			return synthesizeStandIn(tinySpec(spec.Name, 1))
		})
	}
	ms := MultiSource{"file": record("file"), "https": record("https"), "gguf": record("gguf")}
	for _, p := range []string{"/var/m.bin", "https://example.com/m.bin", "/var/m.gguf", "model.bin"} {
		if _, err := ms.Fetch(context.Background(), types.ModelSpec{Name: "m", Path: p}); err != nil {
			t.Fatalf("fetch %s: %v", p, err)
		}
	}
	want := []string{"file", "https", "gguf", "file"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dispatch %d: want %s got %s", i, want[i], got[i])
		}
	}
	if _, err := ms.Fetch(context.Background(), types.ModelSpec{Name: "m", Path: "s3://bucket/m"}); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("unknown scheme should be unavailable, got %v", err)
	}
}
