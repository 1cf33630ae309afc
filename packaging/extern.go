// Package packaging handles the extern-module manifest used when a trained
// model is packaged for deployment. Modules listed there are registered as
// external so the packager links them from the target environment instead
// of freezing them into the archive.
package packaging

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultModules are the accelerated kernels every packaged model refers
// to; they must come from the target environment, never from the archive.
var DefaultModules = []string{
	"cuequivariance",
	"cuequivariance_torch",
}

// moduleNameRegex is the dotted Python module path grammar.
var moduleNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Manifest lists modules to register as external for packaging.
type Manifest struct {
	Modules []string `yaml:"modules"`
}

// ParseManifest decodes and validates a manifest payload.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("packaging: decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads a manifest file from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("packaging: read %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("packaging: %s: %w", path, err)
	}
	return m, nil
}

// Default returns a manifest carrying the built-in module list.
func Default() *Manifest {
	return &Manifest{Modules: append([]string(nil), DefaultModules...)}
}

// Validate checks the manifest lists at least one well-formed module path.
func (m *Manifest) Validate() error {
	if len(m.Modules) == 0 {
		return fmt.Errorf("packaging: manifest lists no modules")
	}
	for _, name := range m.Modules {
		if !moduleNameRegex.MatchString(name) {
			return fmt.Errorf("packaging: invalid module name %q", name)
		}
	}
	return nil
}

// ExternModules returns the deduplicated, sorted module list to hand to
// the packager's registration call.
func (m *Manifest) ExternModules() []string {
	seen := make(map[string]struct{}, len(m.Modules))
	out := make([]string, 0, len(m.Modules))
	for _, name := range m.Modules {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
