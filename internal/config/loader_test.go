package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `
addr: :9999
max_workers: 6
max_models_in_memory: 2
idle_timeout: 10m
cache_db: /tmp/cache.db
categories:
  image-processing:
    max_concurrent: 1
    timeout: 5s
namespaces:
  predictions:
    ttl: 2h
    prefix: "p:"
    max_fallback: 10
models:
  - name: disease-classifier
    path: /models/dc.bin
    input_shape: [8, 8]
    output_size: 4
    priority: 1
warm_up: [disease-classifier]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.MaxWorkers != 6 || cfg.MaxModelsInMemory != 2 || cfg.CacheDB != "/tmp/cache.db" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.IdleTimeout.D() != 10*time.Minute {
		t.Fatalf("idle_timeout: %v", cfg.IdleTimeout.D())
	}
	if c := cfg.Categories["image-processing"]; c.MaxConcurrent != 1 || c.Timeout.D() != 5*time.Second {
		t.Fatalf("unexpected category: %+v", c)
	}
	if ns := cfg.Namespaces["predictions"]; ns.TTL.D() != 2*time.Hour || ns.Prefix != "p:" || ns.MaxFallback != 10 {
		t.Fatalf("unexpected namespace: %+v", ns)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].InputSize() != 64 || cfg.Models[0].Priority != 1 {
		t.Fatalf("unexpected models: %+v", cfg.Models)
	}
	if len(cfg.WarmUp) != 1 || cfg.WarmUp[0] != "disease-classifier" {
		t.Fatalf("unexpected warm_up: %v", cfg.WarmUp)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","models_dir":"/m","idle_timeout":"45s","categories":{"data-analysis":{"max_concurrent":5,"timeout":"1m"}}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ModelsDir != "/m" || cfg.IdleTimeout.D() != 45*time.Second {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if c := cfg.Categories["data-analysis"]; c.MaxConcurrent != 5 || c.Timeout.D() != time.Minute {
		t.Fatalf("unexpected category: %+v", c)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", `
addr = ":8081"
max_models_in_memory = 4
sweep_interval = "30s"

[categories.feature-extraction]
max_concurrent = 8
timeout = "10s"
command = ["/usr/bin/extract", "--json"]

[[models]]
name = "crop-detector"
input_shape = [3]
output_size = 2
priority = 2
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.MaxModelsInMemory != 4 || cfg.SweepInterval.D() != 30*time.Second {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	c := cfg.Categories["feature-extraction"]
	if c.MaxConcurrent != 8 || len(c.Command) != 2 || c.Command[0] != "/usr/bin/extract" {
		t.Fatalf("unexpected category: %+v", c)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Name != "crop-detector" {
		t.Fatalf("unexpected models: %+v", cfg.Models)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	p = writeTempFile(t, d, "bad-duration.yaml", "idle_timeout: soon\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected duration parse error")
	}
}
