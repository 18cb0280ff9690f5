package manager

// UnloadModel releases the resident handle of name. It is idempotent and
// reports false when nothing was loaded.
func (m *Manager) UnloadModel(name string) bool {
	m.mu.Lock()
	e := m.entries[name]
	if !e.resident() {
		m.mu.Unlock()
		return false
	}
	h := e.handle
	e.handle = nil
	residentGauge.Set(float64(m.residentLocked()))
	m.mu.Unlock()

	if err := h.Close(); err != nil {
		m.log.Warn().Str("event", "unload_close_error").Str("model", name).Err(err).Msg("")
	}
	modelEvictionsTotal.WithLabelValues("manual").Inc()
	m.log.Info().Str("event", "unload").Str("model", name).Msg("")
	m.publish("unload", name, nil)
	return true
}
