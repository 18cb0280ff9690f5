package cache

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTTL           = time.Hour
	defaultMaxFallback   = 1000
	defaultSweepInterval = time.Minute
)

// Built-in namespaces.
const (
	NamespacePredictions = "predictions"
	NamespaceFeatures    = "features"
	NamespaceModels      = "models"
	NamespaceAnalysis    = "analysis"
)

// NamespacePolicy configures one namespace.
type NamespacePolicy struct {
	// TTL applied when Set is called with ttl <= 0.
	TTL time.Duration
	// Prefix prepended to every key in the primary backend.
	Prefix string
	// MaxFallback bounds the in-process fallback store.
	MaxFallback int
}

// DefaultNamespaces returns the built-in namespace table.
func DefaultNamespaces() map[string]NamespacePolicy {
	return map[string]NamespacePolicy{
		NamespacePredictions: {TTL: time.Hour, Prefix: "pred:", MaxFallback: 1000},
		NamespaceFeatures:    {TTL: 30 * time.Minute, Prefix: "feat:", MaxFallback: 500},
		NamespaceModels:      {TTL: 6 * time.Hour, Prefix: "model:", MaxFallback: 50},
		NamespaceAnalysis:    {TTL: 15 * time.Minute, Prefix: "analysis:", MaxFallback: 200},
	}
}

// Config configures a Cache.
type Config struct {
	// Primary backend; nil runs on the fallback stores alone.
	Primary Backend
	// Namespaces; nil uses DefaultNamespaces.
	Namespaces map[string]NamespacePolicy
	// SweepInterval between expiry sweeps. Negative disables sweeping.
	SweepInterval time.Duration
	Logger        zerolog.Logger
}

func normalizeNamespace(name string, p NamespacePolicy) NamespacePolicy {
	if p.TTL <= 0 {
		p.TTL = defaultTTL
	}
	if p.Prefix == "" {
		p.Prefix = name + ":"
	}
	if p.MaxFallback <= 0 {
		p.MaxFallback = defaultMaxFallback
	}
	return p
}
