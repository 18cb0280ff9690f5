package scheduler

import "time"

// State is the lifecycle state of a Task.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateTimedOut  State = "timedOut"
	StateFailed    State = "failed"
	StateCompleted State = "completed"
)

// Task is a unit of work owned by the Scheduler from Submit until settlement.
type Task struct {
	ID         string
	Category   string
	Payload    any
	State      State
	EnqueuedAt time.Time
	StartedAt  time.Time
	Deadline   time.Time

	timeout time.Duration
	fut     *Future
}

// TaskInfo is the read-only view of a task handed to executors.
type TaskInfo struct {
	ID         string
	Category   string
	EnqueuedAt time.Time
	Deadline   time.Time
}

func (t *Task) info() TaskInfo {
	return TaskInfo{ID: t.ID, Category: t.Category, EnqueuedAt: t.EnqueuedAt, Deadline: t.Deadline}
}
