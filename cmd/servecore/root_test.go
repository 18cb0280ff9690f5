package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"servecore/internal/manager"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	t.Setenv("SERVECORE_ADDR", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "servecore.yaml")
	writeFile(t, cfgPath, "addr: \":9000\"\nmax_workers: 2\nmax_models_in_memory: 5\n")

	o := &options{}
	serve, _, err := newRootCmdWith(o).Find([]string{"serve"})
	if err != nil {
		t.Fatalf("find serve: %v", err)
	}
	if err := serve.ParseFlags([]string{"--config", cfgPath, "--max-models", "7", "--warm-up", "a, b"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := loadConfig(serve, o)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr=%q, want file value", cfg.Addr)
	}
	if cfg.MaxWorkers != 2 {
		t.Fatalf("max_workers=%d", cfg.MaxWorkers)
	}
	if cfg.MaxModelsInMemory != 7 {
		t.Fatalf("max_models=%d, want flag value", cfg.MaxModelsInMemory)
	}
	if len(cfg.WarmUp) != 2 || cfg.WarmUp[0] != "a" || cfg.WarmUp[1] != "b" {
		t.Fatalf("warm_up=%v", cfg.WarmUp)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log_level=%q, want default", cfg.LogLevel)
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	root := newRootCmd()
	serve, _, _ := root.Find([]string{"serve"})
	_, err := loadConfig(serve, &options{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger("warn", "json", &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("event", "x").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"event":"x"`) {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := newLogger("loud", "json", &buf); err == nil {
		t.Fatal("expected invalid level error")
	}
	if _, err := newLogger("info", "xml", &buf); err == nil {
		t.Fatal("expected invalid format error")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "present.bin"), "")
	cfgPath := filepath.Join(dir, "servecore.yaml")
	writeFile(t, cfgPath, "log_format: json\nlog_level: error\nmodels:\n"+
		"  - name: absent\n    path: "+filepath.Join(dir, "absent.bin")+"\n    input_shape: [4]\n    output_size: 2\n")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"check", "--config", cfgPath, "--models-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("check: %v", err)
	}
	var report manager.SanityReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("json: %v\n%s", err, out.String())
	}
	if report.Available != 1 || report.Missing != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"check", "--config", cfgPath, "--models-dir", dir, "--strict"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected --strict to fail with a missing artifact")
	}
}
