package manager

import (
	"servecore/pkg/types"
)

// Stats returns a read-only snapshot of catalog models and residency.
func (m *Manager) Stats() types.ModelStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := types.ModelStats{
		ResidentCount:  m.residentLocked(),
		MaxResident:    m.maxResident,
		LoadsTotal:     m.loadsTotal,
		EvictionsTotal: m.evictionsTotal,
		Models:         make(map[string]types.ModelEntryStats, len(m.catalog)),
	}
	for name, s := range m.catalog {
		st := types.ModelEntryStats{Priority: s.Priority}
		if e := m.entries[name]; e != nil {
			st.IsLoaded = e.resident()
			st.MemoryEstimate = e.memoryEstimate
			st.Degraded = e.degraded
			st.Quantized = e.quantized
			if !e.loadedAt.IsZero() {
				st.LoadedAt = e.loadedAt.UnixMilli()
			}
			if !e.lastAccess.IsZero() {
				st.LastAccess = e.lastAccess.UnixMilli()
			}
		}
		out.Models[name] = st
	}
	return out
}

// Resident returns the names of the currently resident models.
func (m *Manager) Resident() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for name, e := range m.entries {
		if e.resident() {
			out = append(out, name)
		}
	}
	return out
}

// Degraded reports whether name is resident as a synthesized stand-in.
func (m *Manager) Degraded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e := m.entries[name]
	return e.resident() && e.degraded
}
