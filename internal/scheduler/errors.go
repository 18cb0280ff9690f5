package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned for tasks submitted to, or still pending in, a closed Scheduler.
var ErrClosed = errors.New("scheduler closed")

// UnknownCategoryError signals a submission for a category with no policy.
type UnknownCategoryError struct{ Category string }

func (e UnknownCategoryError) Error() string { return "unknown task category: " + e.Category }

// IsUnknownCategory reports whether err indicates caller misuse (return 4xx).
func IsUnknownCategory(err error) bool {
	var e UnknownCategoryError
	return errors.As(err, &e)
}

// TaskTimeoutError signals that a task exceeded its category timeout and was abandoned.
type TaskTimeoutError struct {
	TaskID   string
	Category string
	Timeout  time.Duration
}

func (e TaskTimeoutError) Error() string {
	return fmt.Sprintf("task %s (%s) timed out after %s", e.TaskID, e.Category, e.Timeout)
}

// IsTaskTimeout reports whether err is a task timeout (retryable 5xx).
func IsTaskTimeout(err error) bool {
	var e TaskTimeoutError
	return errors.As(err, &e)
}

// ExecutionError wraps a failure returned (or panicked) by a task body.
// The scheduler does not interpret the wrapped error.
type ExecutionError struct {
	TaskID   string
	Category string
	Err      error
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("task %s (%s) failed: %v", e.TaskID, e.Category, e.Err)
}

func (e ExecutionError) Unwrap() error { return e.Err }

// IsExecutionError reports whether err came from a task body.
func IsExecutionError(err error) bool {
	var e ExecutionError
	return errors.As(err, &e)
}
