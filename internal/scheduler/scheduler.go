package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scheduler admits tasks by category, bounds their concurrency and enforces
// per-category deadlines.
type Scheduler struct {
	mu         sync.Mutex
	policies   map[string]Policy
	maxWorkers int
	exec       Executor
	log        zerolog.Logger

	queue    []*Task
	running  map[string]int
	total    int
	counters map[string]*outcomeCounters
	closed   bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type outcomeCounters struct {
	completed uint64
	failed    uint64
	timedOut  uint64
}

type outcome struct {
	val any
	err error
}

// New constructs a Scheduler from Config.
func New(cfg Config) *Scheduler {
	pols := cfg.Policies
	if pols == nil {
		pols = DefaultPolicies()
	}
	s := &Scheduler{
		policies:   make(map[string]Policy, len(pols)),
		maxWorkers: cfg.MaxWorkers,
		exec:       cfg.Executor,
		log:        cfg.Logger.With().Str("component", "scheduler").Logger(),
		running:    make(map[string]int),
		counters:   make(map[string]*outcomeCounters),
	}
	for name, p := range pols {
		s.policies[name] = normalizePolicy(p)
		s.counters[name] = &outcomeCounters{}
	}
	if s.maxWorkers <= 0 {
		s.maxWorkers = DefaultMaxWorkers()
	}
	if s.exec == nil {
		s.exec = NewMux()
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	maxWorkersGauge.Set(float64(s.maxWorkers))
	return s
}

// Submit enqueues a task and returns its Future. Submissions for a category
// without a policy are rejected immediately with UnknownCategoryError.
func (s *Scheduler) Submit(category string, payload any) *Future {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return rejected(ErrClosed)
	}
	pol, ok := s.policies[category]
	if !ok {
		s.log.Warn().Str("event", "submit_rejected").Str("category", category).Msg("unknown category")
		tasksTotal.WithLabelValues("unknown", "rejected").Inc()
		return rejected(UnknownCategoryError{Category: category})
	}
	id := uuid.NewString()
	t := &Task{
		ID:         id,
		Category:   category,
		Payload:    payload,
		State:      StateQueued,
		EnqueuedAt: time.Now(),
		timeout:    pol.Timeout,
		fut:        newFuture(id),
	}
	s.queue = append(s.queue, t)
	s.log.Debug().Str("event", "task_queued").Str("task", id).Str("category", category).Int("queue", len(s.queue)).Msg("")
	s.dispatchLocked()
	return t.fut
}

// Run submits a task and waits for its result.
func (s *Scheduler) Run(ctx context.Context, category string, payload any) (any, error) {
	return s.Submit(category, payload).Wait(ctx)
}

// dispatchLocked starts the oldest queued tasks whose category has a free
// slot, until the global cap is reached. Caller holds s.mu.
func (s *Scheduler) dispatchLocked() {
	for i := 0; i < len(s.queue) && s.total < s.maxWorkers; {
		t := s.queue[i]
		if s.running[t.Category] >= s.policies[t.Category].MaxConcurrent {
			i++
			continue
		}
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		s.startLocked(t)
	}
	queueLengthGauge.Set(float64(len(s.queue)))
	activeWorkersGauge.Set(float64(s.total))
}

func (s *Scheduler) startLocked(t *Task) {
	now := time.Now()
	t.State = StateRunning
	t.StartedAt = now
	t.Deadline = now.Add(t.timeout)
	s.running[t.Category]++
	s.total++
	s.wg.Add(1)
	s.log.Debug().Str("event", "task_start").Str("task", t.ID).Str("category", t.Category).
		Dur("waited", now.Sub(t.EnqueuedAt)).Msg("")
	go s.supervise(t)
}

// supervise runs one task body on its own goroutine and settles the task on
// completion or deadline, whichever comes first. The body is abandoned at the
// deadline; its context is canceled and its eventual result dropped.
func (s *Scheduler) supervise(t *Task) {
	defer s.wg.Done()
	ctx, cancel := context.WithDeadline(s.baseCtx, t.Deadline)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := s.exec.Execute(ctx, t.info(), t.Payload)
		done <- outcome{val: v, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		res = outcome{err: ctx.Err()}
	}

	state := StateCompleted
	switch {
	case res.err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		state = StateTimedOut
		res = outcome{err: TaskTimeoutError{TaskID: t.ID, Category: t.Category, Timeout: t.timeout}}
	case s.baseCtx.Err() != nil:
		state = StateFailed
		res = outcome{err: ErrClosed}
	default:
		state = StateFailed
		res.err = ExecutionError{TaskID: t.ID, Category: t.Category, Err: res.err}
	}
	s.finish(t, state)
	t.fut.settle(res.val, res.err)
}

// finish frees the task's slot and dispatches the next eligible task.
func (s *Scheduler) finish(t *Task, state State) {
	elapsed := time.Since(t.StartedAt)
	s.mu.Lock()
	t.State = state
	s.running[t.Category]--
	s.total--
	c := s.counters[t.Category]
	switch state {
	case StateCompleted:
		c.completed++
	case StateTimedOut:
		c.timedOut++
	default:
		c.failed++
	}
	s.dispatchLocked()
	s.mu.Unlock()

	tasksTotal.WithLabelValues(t.Category, string(state)).Inc()
	taskDuration.WithLabelValues(t.Category).Observe(elapsed.Seconds())
	ev := s.log.Debug()
	if state == StateTimedOut {
		ev = s.log.Warn()
	}
	ev.Str("event", "task_end").Str("task", t.ID).Str("category", t.Category).
		Str("state", string(state)).Dur("dur", elapsed).Msg("")
}

// Close rejects queued tasks, cancels running ones and waits for their
// supervisors to settle. Further submissions fail with ErrClosed.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.queue
	s.queue = nil
	queueLengthGauge.Set(0)
	s.mu.Unlock()

	for _, t := range pending {
		t.fut.settle(nil, ErrClosed)
	}
	s.cancel()
	s.wg.Wait()
	s.log.Info().Str("event", "closed").Int("dropped", len(pending)).Msg("scheduler closed")
}
