package archset

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadOverrides walks a directory of YAML files, each holding one
// Definition, and overlays them onto the built-in table. One bad file
// does not fail the rest.
func (r *Registry) LoadOverrides(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// no overrides dir is fine - built-ins cover the common families
		return nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		if loadErr := r.loadOverrideFile(path); loadErr != nil {
			slog.Warn("Failed to load architecture override", "path", path, "error", loadErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk overrides dir %s: %w", dir, err)
	}

	r.mu.Lock()
	r.compile()
	r.mu.Unlock()

	return nil
}

func (r *Registry) loadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read override file: %w", err)
	}

	var override Definition
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("failed to parse override YAML: %w", err)
	}

	if override.Name == "" {
		return fmt.Errorf("override file %s has no architecture name", path)
	}

	name := strings.ToLower(override.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[name]; ok {
		existing.merge(&override)
		return nil
	}

	// Entirely new family; require at least one primary stop so the
	// optimizer has something to work with.
	if len(override.PrimaryStops) == 0 {
		return fmt.Errorf("new architecture %s must declare primary_stops", name)
	}
	if override.MaxStops <= 0 {
		override.MaxStops = 4
	}
	r.defs[name] = &override
	return nil
}
