package potkit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.RDF.Output != "rdf_comparison.png" {
		t.Errorf("unexpected default output: %q", c.RDF.Output)
	}
	if c.RDF.ReferenceLabel == "" || c.RDF.CandidateLabel == "" {
		t.Error("expected default labels")
	}
	if c.Python != "" {
		t.Errorf("expected no default interpreter, got %q", c.Python)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "potkit.yml")
	payload := `python: /opt/conda/bin/python
rdf:
  reference_label: TIP3P
  candidate_label: Allegro
  output: water.png
extern:
  manifest: extern.yml
`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	expected := Config{
		Python: "/opt/conda/bin/python",
		RDF: RDFConfig{
			ReferenceLabel: "TIP3P",
			CandidateLabel: "Allegro",
			Output:         "water.png",
		},
		Extern: ExternConfig{Manifest: "extern.yml"},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "potkit.yml")
	if err := os.WriteFile(path, []byte("python: python3.11\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Python != "python3.11" {
		t.Errorf("expected override, got %q", got.Python)
	}
	if got.RDF.Output != "rdf_comparison.png" {
		t.Errorf("expected default output kept, got %q", got.RDF.Output)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(bad, []byte("python: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected error for bad yaml")
	}
}

func TestOverrideWithEnv(t *testing.T) {
	t.Setenv("POTKIT_PYTHON", "/usr/local/bin/python3")
	t.Setenv("POTKIT_RDF_OUTPUT", "env.png")
	t.Setenv("POTKIT_EXTERN_MANIFEST", "env-extern.yml")

	c := DefaultConfig()
	c.OverrideWithEnv()

	if c.Python != "/usr/local/bin/python3" {
		t.Errorf("expected python override, got %q", c.Python)
	}
	if c.RDF.Output != "env.png" {
		t.Errorf("expected output override, got %q", c.RDF.Output)
	}
	if c.Extern.Manifest != "env-extern.yml" {
		t.Errorf("expected manifest override, got %q", c.Extern.Manifest)
	}
}
