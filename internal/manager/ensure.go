package manager

import (
	"context"
	"errors"
	"time"

	"servecore/pkg/types"
)

// LoadModel returns a resident handle for name, loading it if needed.
//
// A resident model is returned directly (its access time refreshed) unless
// forceReload is set. Concurrent loads of the same name share one in-flight
// load. ctx bounds only the caller's wait; the shared load itself runs to
// completion so other waiters are not affected.
func (m *Manager) LoadModel(ctx context.Context, name string, forceReload bool) (Model, error) {
	if !forceReload {
		if h, ok := m.touch(name); ok {
			return h, nil
		}
	}
	spec, ok := m.spec(name)
	if !ok {
		m.log.Warn().Str("event", "load_unknown_model").Str("model", name).Msg("")
		m.publish("load_unknown_model", name, nil)
		return nil, UnknownModelError{Name: name}
	}
	if !m.Ready() {
		return nil, ErrClosed
	}

	ch := m.flight.DoChan(name, func() (any, error) {
		// A load that finished after the fast path above may have already
		// forgotten its flight key.
		if !forceReload {
			if h, ok := m.touch(name); ok {
				return h, nil
			}
		}
		return m.load(spec)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(Model), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// touch refreshes lastAccess of a resident model and returns its handle.
func (m *Manager) touch(name string) (Model, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[name]
	if !e.resident() {
		return nil, false
	}
	e.lastAccess = m.now()
	return e.handle, true
}

// load runs inside the single-flight group: admission, materialization,
// optional optimization, then commit.
func (m *Manager) load(spec types.ModelSpec) (Model, error) {
	startTs := time.Now()
	m.log.Info().Str("event", "load_start").Str("model", spec.Name).Int("priority", spec.Priority).Msg("")
	m.publish("load_start", spec.Name, map[string]any{"priority": spec.Priority})

	// Free a slot before materializing so peak memory stays within the cap.
	m.evictFor(spec.Name, "admission")

	handle, degraded, err := m.materialize(spec)
	if err != nil {
		modelLoadsTotal.WithLabelValues("error").Inc()
		m.log.Error().Str("event", "load_error").Str("model", spec.Name).Err(err).Msg("")
		m.publish("load_error", spec.Name, map[string]any{"error": err.Error()})
		return nil, err
	}

	quantized := false
	if spec.Quantized {
		opt, oerr := m.optimizer.Optimize(handle)
		if oerr != nil {
			m.log.Warn().Str("event", "optimize_failed").Str("model", spec.Name).Err(oerr).Msg("keeping unoptimized model")
		} else {
			handle = opt
			quantized = true
		}
	}

	// Re-check the cap at commit: concurrent loads of other names may have
	// filled the slots freed at admission.
	victims, ok := m.commit(spec, handle, degraded, quantized)
	for _, v := range victims {
		_ = v.Close()
	}
	if !ok {
		modelLoadsTotal.WithLabelValues("error").Inc()
		m.log.Warn().Str("event", "load_discarded").Str("model", spec.Name).Msg("manager closed during load")
		return nil, ErrClosed
	}

	result := "ok"
	if degraded {
		result = "standin"
	}
	modelLoadsTotal.WithLabelValues(result).Inc()
	m.log.Info().Str("event", "load_ready").Str("model", spec.Name).Bool("degraded", degraded).
		Bool("quantized", quantized).Dur("dur", time.Since(startTs)).Msg("")
	m.publish("load_ready", spec.Name, map[string]any{
		"degraded":  degraded,
		"quantized": quantized,
		"dur_ms":    int(time.Since(startTs) / time.Millisecond),
	})
	return handle, nil
}

// materialize fetches the artifact, falling back to a deterministic stand-in
// when the source cannot provide it.
func (m *Manager) materialize(spec types.ModelSpec) (Model, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.fetchTimeout)
	defer cancel()
	h, err := m.source.Fetch(ctx, spec)
	if err == nil {
		return h, false, nil
	}
	ev := m.log.Warn().Str("event", "load_degraded").Str("model", spec.Name).Err(err)
	if errors.Is(err, ErrSourceUnavailable) {
		ev.Msg("artifact unavailable, synthesizing stand-in")
	} else {
		ev.Msg("artifact fetch failed, synthesizing stand-in")
	}
	m.publish("load_degraded", spec.Name, map[string]any{"error": err.Error()})
	s, serr := synthesizeStandIn(spec)
	if serr != nil {
		return nil, false, ModelLoadError{Name: spec.Name, Err: errors.Join(err, serr)}
	}
	return s, true, nil
}

// commit registers handle as resident, evicting as needed, and returns the
// handles the caller must close outside the lock. After Close the handle is
// not registered; it is returned for closing and ok is false.
func (m *Manager) commit(spec types.ModelSpec, handle Model, degraded, quantized bool) (victims []Model, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return []Model{handle}, false
	}
	victims = m.evictLocked(spec.Name, "admission")
	e := m.entries[spec.Name]
	if e == nil {
		e = &entry{}
		m.entries[spec.Name] = e
	}
	if e.handle != nil && e.handle != handle {
		victims = append(victims, e.handle)
	}
	now := m.now()
	e.spec = spec
	e.handle = handle
	e.loadedAt = now
	e.lastAccess = now
	e.memoryEstimate = estimateMemory(handle)
	e.degraded = degraded
	e.quantized = quantized
	m.loadsTotal++
	residentGauge.Set(float64(m.residentLocked()))
	return victims, true
}
