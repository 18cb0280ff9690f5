package scheduler

import (
	"context"
	"sync"
)

// Future is the settle-once result of a submitted task.
type Future struct {
	id   string
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

func newFuture(id string) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// rejected returns a Future that is already settled with err.
func rejected(err error) *Future {
	f := newFuture("")
	f.settle(nil, err)
	return f
}

func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// ID returns the task id, or "" when the submission was rejected outright.
func (f *Future) ID() string { return f.id }

// Done is closed once the task settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the task settles or ctx is done. Canceling ctx only stops
// the wait; the task keeps its slot until it completes or times out.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
