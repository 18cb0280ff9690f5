package manager

import "servecore/pkg/types"

const bytesPerFloat32 = 4

// Helper: find model in catalog by name.
func (m *Manager) spec(name string) (types.ModelSpec, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.catalog[name]
	return s, ok
}

// Helper: estimate resident bytes for a model handle. Prefers the model's own
// accounting, else four bytes per parameter. Never returns less than 1.
func estimateMemory(h Model) int64 {
	if ms, ok := h.(memorySizer); ok {
		if b := ms.MemoryBytes(); b > 0 {
			return b
		}
	}
	b := h.ParamCount() * bytesPerFloat32
	if b <= 0 {
		return 1
	}
	return b
}
