package config

import (
	"errors"
	"fmt"
	"time"

	"servecore/pkg/types"
)

// Duration is a time.Duration that reads and writes as "30s", "5m".
type Duration time.Duration

func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// CategoryConfig overrides or adds one scheduler category.
type CategoryConfig struct {
	MaxConcurrent int      `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	Timeout       Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	// Command, when set, runs tasks of this category as a subprocess.
	Command []string `json:"command,omitempty" yaml:"command" toml:"command"`
}

// NamespaceConfig overrides or adds one cache namespace.
type NamespaceConfig struct {
	TTL         Duration `json:"ttl" yaml:"ttl" toml:"ttl"`
	Prefix      string   `json:"prefix" yaml:"prefix" toml:"prefix"`
	MaxFallback int      `json:"max_fallback" yaml:"max_fallback" toml:"max_fallback"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Default() via Merge.
type Config struct {
	Addr        string   `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	// Scheduler
	MaxWorkers int                       `json:"max_workers" yaml:"max_workers" toml:"max_workers"`
	Categories map[string]CategoryConfig `json:"categories" yaml:"categories" toml:"categories"`

	// Models
	MaxModelsInMemory int               `json:"max_models_in_memory" yaml:"max_models_in_memory" toml:"max_models_in_memory"`
	IdleTimeout       Duration          `json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`
	SweepInterval     Duration          `json:"sweep_interval" yaml:"sweep_interval" toml:"sweep_interval"`
	ModelsDir         string            `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	Models            []types.ModelSpec `json:"models" yaml:"models" toml:"models"`
	WarmUp            []string          `json:"warm_up" yaml:"warm_up" toml:"warm_up"`
	StatePath         string            `json:"state_path" yaml:"state_path" toml:"state_path"`

	// Cache
	CacheDB            string                     `json:"cache_db" yaml:"cache_db" toml:"cache_db"`
	CacheSweepInterval Duration                   `json:"cache_sweep_interval" yaml:"cache_sweep_interval" toml:"cache_sweep_interval"`
	Namespaces         map[string]NamespaceConfig `json:"namespaces" yaml:"namespaces" toml:"namespaces"`
}

// Default returns the built-in configuration. Categories and namespaces are
// left empty: the scheduler and cache apply their own tables.
func Default() Config {
	return Config{
		Addr:               ":8080",
		LogLevel:           "info",
		LogFormat:          "console",
		MaxModelsInMemory:  3,
		IdleTimeout:        Duration(30 * time.Minute),
		SweepInterval:      Duration(time.Minute),
		CacheSweepInterval: Duration(time.Minute),
	}
}

// Merge returns base with every non-zero field of over applied on top.
// Category and namespace maps merge per key; slices replace.
func Merge(base, over Config) Config {
	out := base
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setStr(&out.Addr, over.Addr)
	setStr(&out.LogLevel, over.LogLevel)
	setStr(&out.LogFormat, over.LogFormat)
	setStr(&out.ModelsDir, over.ModelsDir)
	setStr(&out.StatePath, over.StatePath)
	setStr(&out.CacheDB, over.CacheDB)
	if over.CORSOrigins != nil {
		out.CORSOrigins = over.CORSOrigins
	}
	if over.MaxWorkers != 0 {
		out.MaxWorkers = over.MaxWorkers
	}
	if over.MaxModelsInMemory != 0 {
		out.MaxModelsInMemory = over.MaxModelsInMemory
	}
	if over.IdleTimeout != 0 {
		out.IdleTimeout = over.IdleTimeout
	}
	if over.SweepInterval != 0 {
		out.SweepInterval = over.SweepInterval
	}
	if over.CacheSweepInterval != 0 {
		out.CacheSweepInterval = over.CacheSweepInterval
	}
	if over.Models != nil {
		out.Models = over.Models
	}
	if over.WarmUp != nil {
		out.WarmUp = over.WarmUp
	}
	if len(over.Categories) > 0 {
		m := make(map[string]CategoryConfig, len(base.Categories)+len(over.Categories))
		for k, v := range base.Categories {
			m[k] = v
		}
		for k, v := range over.Categories {
			m[k] = v
		}
		out.Categories = m
	}
	if len(over.Namespaces) > 0 {
		m := make(map[string]NamespaceConfig, len(base.Namespaces)+len(over.Namespaces))
		for k, v := range base.Namespaces {
			m[k] = v
		}
		for k, v := range over.Namespaces {
			m[k] = v
		}
		out.Namespaces = m
	}
	return out
}

// Validate rejects configurations the components cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxWorkers < 0 {
		errs = append(errs, fmt.Errorf("max_workers must be >= 0, got %d", c.MaxWorkers))
	}
	if c.MaxModelsInMemory < 0 {
		errs = append(errs, fmt.Errorf("max_models_in_memory must be >= 0, got %d", c.MaxModelsInMemory))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("sweep_interval must be >= 0"))
	}
	for name, cc := range c.Categories {
		if name == "" {
			errs = append(errs, errors.New("category with empty name"))
		}
		if cc.MaxConcurrent <= 0 {
			errs = append(errs, fmt.Errorf("category %s: max_concurrent must be > 0", name))
		}
		if cc.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("category %s: timeout must be > 0", name))
		}
	}
	for name, nc := range c.Namespaces {
		if nc.TTL < 0 || nc.MaxFallback < 0 {
			errs = append(errs, fmt.Errorf("namespace %s: ttl and max_fallback must be >= 0", name))
		}
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		switch {
		case m.Name == "":
			errs = append(errs, fmt.Errorf("models[%d]: empty name", i))
		case seen[m.Name]:
			errs = append(errs, fmt.Errorf("models[%d]: duplicate name %s", i, m.Name))
		}
		seen[m.Name] = true
		if m.OutputSize < 0 {
			errs = append(errs, fmt.Errorf("model %s: negative output_size", m.Name))
		}
	}
	return errors.Join(errs...)
}
