package manager

import (
	"context"
	"time"

	"servecore/pkg/types"
)

// Model is a resident, ready-to-use inference model handle.
type Model interface {
	Name() string
	InputSize() int
	OutputSize() int
	// ParamCount is the number of learned parameters, used for memory estimates.
	ParamCount() int64
	// Predict runs one forward pass over a flattened input tensor.
	Predict(ctx context.Context, input []float32) ([]float32, error)
	// Close releases resources associated with the model.
	Close() error
}

// memorySizer is implemented by models that know their resident size.
type memorySizer interface {
	MemoryBytes() int64
}

// entry is the manager's record for one catalog model.
type entry struct {
	spec           types.ModelSpec
	handle         Model
	loadedAt       time.Time
	lastAccess     time.Time
	memoryEstimate int64
	degraded       bool
	quantized      bool
}

func (e *entry) resident() bool { return e != nil && e.handle != nil }
