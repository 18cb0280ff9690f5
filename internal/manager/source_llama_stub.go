//go:build !llama

package manager

import (
	"context"
	"fmt"

	"servecore/pkg/types"
)

func ggufSource() ModelSource {
	return SourceFunc(func(_ context.Context, spec types.ModelSpec) (Model, error) {
		return nil, fmt.Errorf("model %s: gguf support not built in: %w", spec.Name, ErrSourceUnavailable)
	})
}
