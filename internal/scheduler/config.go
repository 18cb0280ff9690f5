package scheduler

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config/Policy fields are unset.
const (
	defaultWorkerCeiling = 4
	defaultTimeout       = 30 * time.Second
	defaultKillGrace     = 2 * time.Second
)

// Built-in task categories.
const (
	CategoryImageProcessing   = "image-processing"
	CategoryModelInference    = "model-inference"
	CategoryDataAnalysis      = "data-analysis"
	CategoryFeatureExtraction = "feature-extraction"
)

// Policy is the static concurrency/timeout configuration of one category.
type Policy struct {
	MaxConcurrent int
	Timeout       time.Duration
}

// DefaultPolicies returns a fresh copy of the built-in category policies.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		CategoryImageProcessing:   {MaxConcurrent: 2, Timeout: 30 * time.Second},
		CategoryModelInference:    {MaxConcurrent: 3, Timeout: 60 * time.Second},
		CategoryDataAnalysis:      {MaxConcurrent: 2, Timeout: 45 * time.Second},
		CategoryFeatureExtraction: {MaxConcurrent: 4, Timeout: 20 * time.Second},
	}
}

// Config encapsulates all tunables for Scheduler construction.
type Config struct {
	// Policies per category. Nil uses DefaultPolicies.
	Policies map[string]Policy
	// MaxWorkers caps concurrently running tasks across categories.
	// Zero means min(4, runtime.NumCPU()).
	MaxWorkers int
	// Executor runs task bodies. Required.
	Executor Executor
	Logger   zerolog.Logger
}

// DefaultMaxWorkers is the global worker cap used when Config.MaxWorkers is unset.
func DefaultMaxWorkers() int {
	return min(defaultWorkerCeiling, runtime.NumCPU())
}

func normalizePolicy(p Policy) Policy {
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = 1
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	return p
}
