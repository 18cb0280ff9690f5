package scheduler

import "servecore/pkg/types"

// Stats returns a point-in-time snapshot. It has no side effects.
func (s *Scheduler) Stats() types.SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := types.SchedulerStats{
		ActiveWorkers: s.total,
		MaxWorkers:    s.maxWorkers,
		QueueLength:   len(s.queue),
		Categories:    make(map[string]types.CategoryStats, len(s.policies)),
	}
	queued := make(map[string]int)
	for _, t := range s.queue {
		queued[t.Category]++
	}
	for name, p := range s.policies {
		c := s.counters[name]
		out.Categories[name] = types.CategoryStats{
			Running:       s.running[name],
			Queued:        queued[name],
			MaxConcurrent: p.MaxConcurrent,
			TimeoutMS:     p.Timeout.Milliseconds(),
			Completed:     c.completed,
			Failed:        c.failed,
			TimedOut:      c.timedOut,
		}
	}
	return out
}

// Policy returns the policy registered for category.
func (s *Scheduler) Policy(category string) (Policy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[category]
	return p, ok
}
