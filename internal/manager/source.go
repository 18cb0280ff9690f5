package manager

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/url"
	"os"
	"strings"

	"servecore/internal/common/fsutil"
	"servecore/pkg/types"
)

// ModelSource materializes a catalog entry into a resident model.
// ErrSourceUnavailable (possibly wrapped) signals that the artifact is absent.
type ModelSource interface {
	Fetch(ctx context.Context, spec types.ModelSpec) (Model, error)
}

// SourceFunc adapts a function to ModelSource.
type SourceFunc func(ctx context.Context, spec types.ModelSpec) (Model, error)

func (f SourceFunc) Fetch(ctx context.Context, spec types.ModelSpec) (Model, error) {
	return f(ctx, spec)
}

// FileSource reads dense artifacts from local disk. An artifact is the
// row-major weight matrix (OutputSize rows of InputSize values) followed by
// OutputSize biases, all float32 little-endian.
type FileSource struct{}

func (FileSource) Fetch(ctx context.Context, spec types.ModelSpec) (Model, error) {
	p := strings.TrimSpace(spec.Path)
	if p == "" {
		return nil, fmt.Errorf("model %s has no path: %w", spec.Name, ErrSourceUnavailable)
	}
	p, err := fsutil.LocalPath(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model %s: %w: %v", spec.Name, ErrSourceUnavailable, err)
		}
		return nil, err
	}
	defer f.Close()
	return decodeDense(ctx, spec, f)
}

// decodeDense reads exactly one dense artifact for spec from r.
func decodeDense(ctx context.Context, spec types.ModelSpec, r io.Reader) (Model, error) {
	in, out := spec.InputSize(), spec.OutputSize
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("model %s: invalid shape %v -> %d", spec.Name, spec.InputShape, out)
	}
	vals := make([]float32, in*out+out)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, fmt.Errorf("model %s: read weights: %w", spec.Name, err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("model %s: artifact larger than %d values", spec.Name, len(vals))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, v := range vals {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("model %s: non-finite value at %d", spec.Name, i)
		}
	}
	return newDenseModel(spec.Name, in, out, vals[:in*out], vals[in*out:])
}

// EncodeDense writes weights and bias in the artifact layout FileSource reads.
func EncodeDense(w io.Writer, weights, bias []float32) error {
	if err := binary.Write(w, binary.LittleEndian, weights); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, bias)
}

// MultiSource dispatches on the URL scheme of ModelSpec.Path. Paths without
// a scheme use the "file" entry.
type MultiSource map[string]ModelSource

func (ms MultiSource) Fetch(ctx context.Context, spec types.ModelSpec) (Model, error) {
	scheme := "file"
	if u, err := url.Parse(spec.Path); err == nil && len(u.Scheme) > 1 {
		scheme = strings.ToLower(u.Scheme)
	}
	if strings.HasSuffix(strings.ToLower(spec.Path), ".gguf") {
		if s, ok := ms["gguf"]; ok {
			return s.Fetch(ctx, spec)
		}
	}
	s, ok := ms[scheme]
	if !ok {
		return nil, fmt.Errorf("model %s: no source for scheme %q: %w", spec.Name, scheme, ErrSourceUnavailable)
	}
	return s.Fetch(ctx, spec)
}

// DefaultSource serves local files and http(s) artifacts, plus GGUF files
// when built with the llama tag.
func DefaultSource() ModelSource {
	hs := NewHTTPSource(nil)
	ms := MultiSource{
		"file":  FileSource{},
		"http":  hs,
		"https": hs,
	}
	ms["gguf"] = ggufSource()
	return ms
}
