package scheduler

import (
	"context"
	"fmt"
	"sync"
)

// Executor runs a task body. Implementations must return when ctx is done;
// an execution that ignores ctx is abandoned by the scheduler at its deadline.
type Executor interface {
	Execute(ctx context.Context, task TaskInfo, payload any) (any, error)
}

// ExecutorFunc adapts a plain function to Executor. The function runs on its
// own goroutine.
type ExecutorFunc func(ctx context.Context, task TaskInfo, payload any) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, task TaskInfo, payload any) (any, error) {
	return f(ctx, task, payload)
}

// Mux routes tasks to executors by category.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Executor
	fallback Executor
}

func NewMux() *Mux { return &Mux{handlers: make(map[string]Executor)} }

// Handle registers e for category, replacing any previous registration.
func (m *Mux) Handle(category string, e Executor) {
	m.mu.Lock()
	m.handlers[category] = e
	m.mu.Unlock()
}

// HandleFunc registers f for category.
func (m *Mux) HandleFunc(category string, f func(ctx context.Context, task TaskInfo, payload any) (any, error)) {
	m.Handle(category, ExecutorFunc(f))
}

// Default sets the executor used for categories without a registration.
func (m *Mux) Default(e Executor) {
	m.mu.Lock()
	m.fallback = e
	m.mu.Unlock()
}

// Categories returns the categories with a registered executor.
func (m *Mux) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.handlers))
	for c := range m.handlers {
		out = append(out, c)
	}
	return out
}

func (m *Mux) Execute(ctx context.Context, task TaskInfo, payload any) (any, error) {
	m.mu.RLock()
	e := m.handlers[task.Category]
	if e == nil {
		e = m.fallback
	}
	m.mu.RUnlock()
	if e == nil {
		return nil, fmt.Errorf("no executor registered for category %q", task.Category)
	}
	return e.Execute(ctx, task, payload)
}
