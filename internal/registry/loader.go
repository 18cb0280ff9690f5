package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"servecore/internal/common/fsutil"
	"servecore/pkg/types"
)

// artifactExts are the file types a models directory may hold.
var artifactExts = map[string]bool{".bin": true, ".gguf": true}

// LoadDir scans dir for model artifacts (*.bin, *.gguf). The model name is the
// file stem and Path the absolute file path. A sidecar "<stem>.yaml" next to
// the artifact supplies the remaining ModelSpec fields.
func LoadDir(dir string) ([]types.ModelSpec, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.ModelSpec
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !artifactExts[ext] {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		spec := types.ModelSpec{Name: stem}
		if err := readSidecar(filepath.Join(abs, stem+".yaml"), &spec); err != nil {
			return nil, err
		}
		// the file on disk is authoritative for name and location
		spec.Name = stem
		spec.Path = filepath.Join(abs, name)
		models = append(models, spec)
	}
	return models, nil
}

func readSidecar(path string, spec *types.ModelSpec) error {
	if !fsutil.PathExists(path) {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, spec); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Merge combines the configured catalog with discovered artifacts. Configured
// entries keep their order and fields; an empty Path is filled from the
// artifact of the same name. Discovered models that are not configured are
// appended.
func Merge(configured, discovered []types.ModelSpec) []types.ModelSpec {
	byName := make(map[string]types.ModelSpec, len(discovered))
	for _, d := range discovered {
		byName[d.Name] = d
	}
	out := make([]types.ModelSpec, 0, len(configured)+len(discovered))
	seen := make(map[string]bool, len(configured))
	for _, c := range configured {
		if d, ok := byName[c.Name]; ok && strings.TrimSpace(c.Path) == "" {
			c.Path = d.Path
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	for _, d := range discovered {
		if !seen[d.Name] {
			out = append(out, d)
		}
	}
	return out
}
