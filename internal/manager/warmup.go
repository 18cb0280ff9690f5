package manager

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WarmUpModels loads names in parallel, at most maxResident at a time.
// Failures are logged and never abort the batch; the number of models that
// loaded is returned.
func (m *Manager) WarmUpModels(ctx context.Context, names []string) int {
	var loaded atomic.Int64
	var g errgroup.Group
	g.SetLimit(max(1, m.maxResident))
	for _, name := range names {
		g.Go(func() error {
			if _, err := m.LoadModel(ctx, name, false); err != nil {
				m.log.Warn().Str("event", "warmup_failed").Str("model", name).Err(err).Msg("")
				return nil
			}
			loaded.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	m.log.Info().Str("event", "warmup_done").Int("requested", len(names)).Int64("loaded", loaded.Load()).Msg("")
	return int(loaded.Load())
}
