package manager

// residentLocked counts models with a live handle. Caller holds m.mu.
func (m *Manager) residentLocked() int {
	n := 0
	for _, e := range m.entries {
		if e.resident() {
			n++
		}
	}
	return n
}

// victimLocked selects the resident model to evict, ignoring exclude: the
// highest Priority value first, then the oldest lastAccess, then name.
// Returns "" when nothing is evictable. Caller holds m.mu.
func (m *Manager) victimLocked(exclude string) string {
	var best string
	var be *entry
	for name, e := range m.entries {
		if name == exclude || !e.resident() {
			continue
		}
		if be == nil ||
			e.spec.Priority > be.spec.Priority ||
			(e.spec.Priority == be.spec.Priority && e.lastAccess.Before(be.lastAccess)) ||
			(e.spec.Priority == be.spec.Priority && e.lastAccess.Equal(be.lastAccess) && name < best) {
			best, be = name, e
		}
	}
	return best
}

// evictLocked unloads victims until one more model named incoming fits under
// the cap. Admission never blocks: when nothing is evictable the load still
// proceeds. Returned handles must be closed by the caller outside the lock.
func (m *Manager) evictLocked(incoming, reason string) []Model {
	var out []Model
	for {
		others := m.residentLocked()
		if e := m.entries[incoming]; e.resident() {
			others--
		}
		if others < m.maxResident {
			return out
		}
		name := m.victimLocked(incoming)
		if name == "" {
			return out
		}
		e := m.entries[name]
		out = append(out, e.handle)
		e.handle = nil
		m.evictionsTotal++
		modelEvictionsTotal.WithLabelValues(reason).Inc()
		m.log.Info().Str("event", "evict").Str("model", name).Str("reason", reason).
			Str("incoming", incoming).Int("priority", e.spec.Priority).Msg("")
		m.publisher.Publish(Event{Name: "evict", ModelID: name, Fields: map[string]any{"reason": reason, "incoming": incoming}})
	}
}

// evictFor frees a slot for incoming before its artifact is materialized.
func (m *Manager) evictFor(incoming, reason string) {
	m.mu.Lock()
	victims := m.evictLocked(incoming, reason)
	residentGauge.Set(float64(m.residentLocked()))
	m.mu.Unlock()
	for _, v := range victims {
		_ = v.Close()
	}
}
