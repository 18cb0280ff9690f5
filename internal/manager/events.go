package manager

// Event is a model lifecycle notification: load_start, load_ready,
// load_degraded, load_error, load_unknown_model, evict, idle_unload, unload.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives manager events. Publish is called on the load and
// eviction paths, sometimes under the manager lock, so it must not block or
// call back into the Manager.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
