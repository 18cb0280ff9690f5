package config

import (
	"strings"
	"testing"
	"time"

	"servecore/pkg/types"
)

func TestMergeOverridesNonZero(t *testing.T) {
	base := Default()
	base.Categories = map[string]CategoryConfig{"a": {MaxConcurrent: 1, Timeout: Duration(time.Second)}}
	over := Config{
		Addr:       ":9000",
		MaxWorkers: 2,
		Categories: map[string]CategoryConfig{"b": {MaxConcurrent: 3, Timeout: Duration(time.Minute)}},
	}
	got := Merge(base, over)
	if got.Addr != ":9000" || got.MaxWorkers != 2 {
		t.Fatalf("override not applied: %+v", got)
	}
	if got.LogLevel != "info" || got.MaxModelsInMemory != 3 || got.IdleTimeout.D() != 30*time.Minute {
		t.Fatalf("defaults lost: %+v", got)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("categories should merge per key: %+v", got.Categories)
	}
	if len(base.Categories) != 1 {
		t.Fatalf("base mutated")
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := Default()
	bad.MaxWorkers = -1
	bad.Categories = map[string]CategoryConfig{"x": {MaxConcurrent: 0, Timeout: 0}}
	bad.Models = []types.ModelSpec{{Name: "m"}, {Name: "m"}, {}}
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"max_workers", "max_concurrent", "timeout", "duplicate name m", "empty name"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.D() != 90*time.Second {
		t.Fatalf("got %v", d.D())
	}
	b, _ := d.MarshalText()
	if string(b) != "1m30s" {
		t.Fatalf("marshal: %s", b)
	}
}
