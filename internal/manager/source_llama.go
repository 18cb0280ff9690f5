//go:build llama

package manager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"servecore/internal/common/fsutil"
	"servecore/pkg/types"
)

const ggufContext = 512

func ggufSource() ModelSource { return llamaSource{} }

// llamaSource loads GGUF artifacts in-process with embeddings enabled.
type llamaSource struct{}

func (llamaSource) Fetch(ctx context.Context, spec types.ModelSpec) (Model, error) {
	p, err := fsutil.LocalPath(spec.Path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model %s: %w: %v", spec.Name, ErrSourceUnavailable, err)
		}
		return nil, err
	}
	lm, err := llama.New(p, llama.EnableEmbeddings, llama.SetContext(ggufContext))
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Name, err)
	}
	return &llamaModel{spec: spec, lm: lm, size: fi.Size()}, nil
}

// llamaModel treats the input as token ids and returns the embedding
// vector truncated or zero-padded to OutputSize.
type llamaModel struct {
	spec types.ModelSpec
	size int64
	mu   sync.Mutex
	lm   *llama.LLama
}

func (l *llamaModel) Name() string      { return l.spec.Name }
func (l *llamaModel) InputSize() int    { return l.spec.InputSize() }
func (l *llamaModel) OutputSize() int   { return l.spec.OutputSize }
func (l *llamaModel) ParamCount() int64 { return 0 }

// MemoryBytes approximates resident size by the mapped file size.
func (l *llamaModel) MemoryBytes() int64 { return l.size }

func (l *llamaModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := make([]int, len(input))
	for i, v := range input {
		tokens[i] = int(v)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lm == nil {
		return nil, errors.New("llama model closed")
	}
	emb, err := l.lm.TokenEmbeddings(tokens, llama.SetThreads(max(1, runtime.NumCPU()/2)))
	if err != nil {
		return nil, err
	}
	out := make([]float32, l.spec.OutputSize)
	copy(out, emb)
	return out, nil
}

func (l *llamaModel) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lm != nil {
		l.lm.Free()
		l.lm = nil
	}
	return nil
}
