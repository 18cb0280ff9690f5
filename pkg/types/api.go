package types

// ModelsResponse wraps the model catalog returned by GET /models.
type ModelsResponse struct {
	// Catalog entries.
	Models []ModelSpec `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// TaskResponse is returned by POST /tasks/{category}.
type TaskResponse struct {
	// Task identifier assigned by the scheduler.
	// example: 0b8e5a52-7f0c-4b8e-9d0e-3f1f3c9b2a11
	ID string `json:"id" example:"0b8e5a52-7f0c-4b8e-9d0e-3f1f3c9b2a11"`
	// Category the task ran under.
	// example: model-inference
	Category string `json:"category" example:"model-inference"`
	// Result produced by the task body.
	Result any `json:"result"`
	// Wall time from submission to settlement in milliseconds.
	// example: 120
	DurationMS int64 `json:"duration_ms" example:"120"`
}

// WarmupRequest is the body of POST /models/warmup.
type WarmupRequest struct {
	// Model names to load.
	// example: ["disease-classifier","crop-detector"]
	Models []string `json:"models"`
}

// LoadResponse is returned by model load/unload endpoints.
type LoadResponse struct {
	// example: disease-classifier
	Model string `json:"model" example:"disease-classifier"`
	// Whether the model is resident after the call.
	// example: true
	Loaded bool `json:"loaded" example:"true"`
	// Whether the resident handle is a synthesized stand-in.
	// example: false
	Degraded bool `json:"degraded,omitempty" example:"false"`
}

// CategoryStats summarizes one scheduler category.
type CategoryStats struct {
	// example: 1
	Running int `json:"running" example:"1"`
	// example: 3
	Queued int `json:"queued" example:"3"`
	// example: 2
	MaxConcurrent int `json:"max_concurrent" example:"2"`
	// example: 30000
	TimeoutMS int64 `json:"timeout_ms" example:"30000"`
	// example: 10
	Completed uint64 `json:"completed" example:"10"`
	// example: 1
	Failed uint64 `json:"failed" example:"1"`
	// example: 0
	TimedOut uint64 `json:"timed_out" example:"0"`
}

// SchedulerStats is a point-in-time view of the task scheduler.
type SchedulerStats struct {
	// Tasks currently executing.
	// example: 2
	ActiveWorkers int `json:"active_workers" example:"2"`
	// Global concurrency cap.
	// example: 4
	MaxWorkers int `json:"max_workers" example:"4"`
	// Tasks waiting for a slot.
	// example: 5
	QueueLength int `json:"queue_length" example:"5"`
	// Per-category breakdown.
	Categories map[string]CategoryStats `json:"categories"`
}

// ModelEntryStats summarizes one catalog model.
type ModelEntryStats struct {
	// example: 2
	Priority int `json:"priority" example:"2"`
	// Load time (unix milliseconds), zero if never loaded.
	// example: 1700000000000
	LoadedAt int64 `json:"loaded_at_ms" example:"1700000000000"`
	// Estimated resident size in bytes.
	// example: 4194304
	MemoryEstimate int64 `json:"memory_estimate_bytes" example:"4194304"`
	// Last access time (unix milliseconds).
	// example: 1700000000000
	LastAccess int64 `json:"last_access_ms" example:"1700000000000"`
	// example: true
	IsLoaded bool `json:"is_loaded" example:"true"`
	// Whether the handle is a synthesized stand-in.
	// example: false
	Degraded bool `json:"degraded" example:"false"`
	// Whether the resident handle was quantized.
	// example: false
	Quantized bool `json:"quantized" example:"false"`
}

// ModelStats is a point-in-time view of the model lifecycle manager.
type ModelStats struct {
	// example: 2
	ResidentCount int `json:"resident_count" example:"2"`
	// example: 3
	MaxResident int `json:"max_resident" example:"3"`
	// Loads performed since start.
	// example: 7
	LoadsTotal uint64 `json:"loads_total" example:"7"`
	// Evictions performed since start (admission and idle).
	// example: 2
	EvictionsTotal uint64 `json:"evictions_total" example:"2"`
	// Per-model breakdown keyed by name.
	Models map[string]ModelEntryStats `json:"models"`
}

// NamespaceStats summarizes one cache namespace.
type NamespaceStats struct {
	// example: pred:
	Prefix string `json:"prefix" example:"pred:"`
	// example: 3600000
	TTLMS int64 `json:"ttl_ms" example:"3600000"`
	// example: 12
	FallbackEntries int `json:"fallback_entries" example:"12"`
	// example: 1000
	MaxFallback int `json:"max_fallback" example:"1000"`
}

// CacheStats is a point-in-time view of the tiered cache.
type CacheStats struct {
	// Primary backend name, empty when running fallback-only.
	// example: sqlite
	Primary string `json:"primary" example:"sqlite"`
	// Primary backend failures observed since start.
	// example: 0
	PrimaryFailures uint64 `json:"primary_failures" example:"0"`
	// example: 120
	Hits uint64 `json:"hits" example:"120"`
	// example: 30
	Misses uint64 `json:"misses" example:"30"`
	// Operations served by the fallback tier.
	// example: 0
	FallbackOps uint64 `json:"fallback_ops" example:"0"`
	// Per-namespace breakdown.
	Namespaces map[string]NamespaceStats `json:"namespaces"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Scheduler SchedulerStats `json:"scheduler"`
	Models    ModelStats     `json:"models"`
	Cache     CacheStats     `json:"cache"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// WarmupResponse is returned by POST /models/warmup.
type WarmupResponse struct {
	// example: 3
	Requested int `json:"requested" example:"3"`
	// example: 2
	Loaded int `json:"loaded" example:"2"`
}
