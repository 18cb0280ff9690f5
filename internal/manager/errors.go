package manager

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is returned by a ModelSource when the artifact is
// absent or unreachable. The manager answers it with a stand-in model.
var ErrSourceUnavailable = errors.New("model source unavailable")

// UnknownModelError is returned when a requested name is not in the catalog.
type UnknownModelError struct{ Name string }

func (e UnknownModelError) Error() string { return "unknown model: " + e.Name }

// IsUnknownModel reports whether the error indicates a missing catalog entry (4xx).
func IsUnknownModel(err error) bool {
	var e UnknownModelError
	return errors.As(err, &e)
}

// ModelLoadError is returned only when both the artifact source and the
// stand-in synthesis failed.
type ModelLoadError struct {
	Name string
	Err  error
}

func (e ModelLoadError) Error() string { return fmt.Sprintf("load model %s: %v", e.Name, e.Err) }

func (e ModelLoadError) Unwrap() error { return e.Err }

// IsModelLoadError reports whether err is a load failure (retryable 5xx).
func IsModelLoadError(err error) bool {
	var e ModelLoadError
	return errors.As(err, &e)
}

// ErrClosed is returned by LoadModel after Close.
var ErrClosed = errors.New("model manager closed")

// InputSizeError reports an inference input whose width does not match the model.
type InputSizeError struct {
	Name      string
	Want, Got int
}

func (e InputSizeError) Error() string {
	return fmt.Sprintf("model %s expects %d inputs, got %d", e.Name, e.Want, e.Got)
}

// IsInputSize reports whether err is a caller-side shape mismatch (4xx).
func IsInputSize(err error) bool {
	var e InputSizeError
	return errors.As(err, &e)
}
