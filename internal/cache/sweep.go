package cache

import (
	"context"
	"time"
)

func (c *Cache) sweepLoop() {
	defer close(c.done)
	t := time.NewTicker(c.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.Sweep(context.Background())
		}
	}
}

// Sweep purges expired entries from every fallback store and, when supported,
// from the primary. It returns the number of entries removed.
func (c *Cache) Sweep(ctx context.Context) int64 {
	var total int64
	for _, t := range c.tiers {
		n, _ := t.fallback.Sweep(ctx)
		total += n
	}
	if sw, ok := c.primary.(Sweeper); ok {
		n, err := sw.Sweep(ctx)
		if err != nil {
			c.failures.Add(1)
			backendFailures.WithLabelValues("sweep").Inc()
			c.log.Warn().Str("event", "sweep_error").Err(err).Msg("")
		}
		total += n
	}
	if total > 0 {
		c.log.Debug().Str("event", "sweep").Int64("removed", total).Msg("")
	}
	return total
}
