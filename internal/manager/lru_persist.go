package manager

import (
	"encoding/json"
	"os"
	"sort"

	"servecore/internal/common/fsutil"
)

type residentRecord struct {
	LastUsedUnix int64 `json:"last_used_unix"`
	MemoryBytes  int64 `json:"memory_bytes"`
}

// PreviouslyResident returns the models recorded as resident at the last
// Close, most recently used first and limited to catalog names. A missing or
// unreadable state file yields nil.
func (m *Manager) PreviouslyResident() []string {
	if m.statePath == "" {
		return nil
	}
	f, err := os.Open(m.statePath)
	if err != nil {
		return nil
	}
	defer f.Close()
	var data map[string]residentRecord
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		m.log.Warn().Str("event", "state_decode_error").Str("path", m.statePath).Err(err).Msg("")
		return nil
	}
	names := make([]string, 0, len(data))
	for name := range data {
		if _, ok := m.spec(name); ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := data[names[i]], data[names[j]]
		if a.LastUsedUnix != b.LastUsedUnix {
			return a.LastUsedUnix > b.LastUsedUnix
		}
		return names[i] < names[j]
	})
	if len(names) > m.maxResident {
		names = names[:m.maxResident]
	}
	return names
}

func (m *Manager) saveResidentState() {
	if m.statePath == "" {
		return
	}
	// Snapshot under lock
	m.mu.RLock()
	snap := make(map[string]residentRecord)
	for name, e := range m.entries {
		if e.resident() {
			snap[name] = residentRecord{LastUsedUnix: e.lastAccess.Unix(), MemoryBytes: e.memoryEstimate}
		}
	}
	m.mu.RUnlock()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	if err := fsutil.WriteFileAtomic(m.statePath, b, 0o644); err != nil {
		m.log.Warn().Str("event", "state_write_error").Str("path", m.statePath).Err(err).Msg("")
	}
}
