package manager

import (
	"time"
)

// sweepLoop unloads idle models every sweepEvery until Close.
func (m *Manager) sweepLoop() {
	defer close(m.done)
	t := time.NewTicker(m.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.safeSweep()
		}
	}
}

// safeSweep keeps the sweeper alive across a failing pass.
func (m *Manager) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("event", "sweep_panic").Interface("panic", r).Msg("idle sweep failed")
		}
	}()
	m.SweepIdle(m.now())
}

// SweepIdle unloads every resident model whose last access is older than the
// idle timeout as of now, and returns their names.
func (m *Manager) SweepIdle(now time.Time) []string {
	if m.idleTimeout <= 0 {
		return nil
	}
	m.mu.Lock()
	var names []string
	var handles []Model
	for name, e := range m.entries {
		if e.resident() && now.Sub(e.lastAccess) > m.idleTimeout {
			names = append(names, name)
			handles = append(handles, e.handle)
			e.handle = nil
			m.evictionsTotal++
		}
	}
	residentGauge.Set(float64(m.residentLocked()))
	m.mu.Unlock()

	for i, h := range handles {
		if err := h.Close(); err != nil {
			m.log.Warn().Str("event", "idle_close_error").Str("model", names[i]).Err(err).Msg("")
		}
		modelEvictionsTotal.WithLabelValues("idle").Inc()
		m.log.Info().Str("event", "idle_unload").Str("model", names[i]).Msg("")
		m.publish("idle_unload", names[i], nil)
	}
	return names
}
