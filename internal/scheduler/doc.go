// Package scheduler bounds and sequences CPU-heavy computations. It is
// structured into small files by concern:
//
//   - scheduler.go: Scheduler type, Submit/Run, dispatch and supervision.
//   - config.go: Config, Policy and package defaults; New applies defaults.
//   - task.go: Task, State and the TaskInfo handed to executors.
//   - future.go: Future, the settle-once handle returned by Submit.
//   - errors.go: error types and predicates (IsUnknownCategory, IsTaskTimeout).
//   - executor.go: Executor interface, ExecutorFunc and the category Mux.
//   - process.go: ProcessExecutor, one OS process per task.
//   - stats.go, metrics.go: snapshots and Prometheus collectors.
//
// Dispatch is global FIFO subject to per-category slots: the oldest queued
// task whose category has a free slot starts next, as long as the global
// worker cap is not reached. Slot bookkeeping is only touched by the
// scheduler's own supervisor goroutines, never by task bodies.
package scheduler
