package potkit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RDFConfig controls the rdf command.
type RDFConfig struct {
	// ReferenceLabel names the classical force field curve in the legend.
	ReferenceLabel string `yaml:"reference_label"`
	// CandidateLabel names the learned potential curve.
	CandidateLabel string `yaml:"candidate_label"`
	Output         string `yaml:"output"`
}

// ExternConfig controls the extern command.
type ExternConfig struct {
	Manifest string `yaml:"manifest"`
}

// Config is the optional on-disk configuration.
type Config struct {
	// Python is the interpreter used to probe the active torch runtime.
	Python string       `yaml:"python"`
	RDF    RDFConfig    `yaml:"rdf"`
	Extern ExternConfig `yaml:"extern"`
}

func DefaultConfig() Config {
	return Config{
		RDF: RDFConfig{
			ReferenceLabel: "reference",
			CandidateLabel: "model",
			Output:         "rdf_comparison.png",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config %s: %w", path, err)
	}
	return c, nil
}

// OverrideWithEnv applies environment overrides on top of file and
// defaults.
func (c *Config) OverrideWithEnv() {
	if v := os.Getenv("POTKIT_PYTHON"); v != "" {
		c.Python = v
	}
	if v := os.Getenv("POTKIT_RDF_OUTPUT"); v != "" {
		c.RDF.Output = v
	}
	if v := os.Getenv("POTKIT_EXTERN_MANIFEST"); v != "" {
		c.Extern.Manifest = v
	}
}
