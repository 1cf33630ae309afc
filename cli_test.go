package potkit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlp-tools/potkit/torchenv"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := RunCLI(&out, &errOut, args)
	return code, out.String(), errOut.String()
}

func TestRunCLIVersion(t *testing.T) {
	code, _, errOut := runCLI(t, "--version")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if !strings.Contains(errOut, "potkit version") {
		t.Errorf("expected version banner, got: %s", errOut)
	}
}

func TestRunCLINoCommand(t *testing.T) {
	code, out, errOut := runCLI(t)
	if code != ExitErr {
		t.Fatalf("expected exit %d, got %d", ExitErr, code)
	}
	if !strings.Contains(errOut, "command is not available") {
		t.Errorf("expected command error, got: %s", errOut)
	}
	if !strings.Contains(out, "Usage: potkit") {
		t.Errorf("expected help output, got: %s", out)
	}
}

func TestRunCLIUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "deploy")
	if code != ExitErr {
		t.Fatalf("expected exit %d, got %d", ExitErr, code)
	}
	if !strings.Contains(errOut, "command is not available") {
		t.Errorf("expected command error, got: %s", errOut)
	}
}

func TestRunCLIHelp(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	if code != ExitErr {
		t.Fatalf("expected exit %d, got %d", ExitErr, code)
	}
	for _, want := range []string{"resolve", "rdf", "extern", "--log-level"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to mention %q, got: %s", want, out)
		}
	}
}

func TestResolveFromEnvironment(t *testing.T) {
	t.Setenv(torchenv.VersionEnv, "2.8.0+cu118")

	code, out, _ := runCLI(t, "resolve")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}

	expected := "TORCH_VERSION=2.8.0+cu118\n" +
		"TORCH_MAJOR_MINOR=2.8\n" +
		"SOURCE=environment\n" +
		"2.8"
	if out != expected {
		t.Errorf("output mismatch:\nwant: %q\ngot:  %q", expected, out)
	}
}

func TestResolveMissingCheckpointFallsBack(t *testing.T) {
	t.Setenv(torchenv.VersionEnv, "2.4.1")

	code, out, _ := runCLI(t, "resolve", filepath.Join(t.TempDir(), "nope.ckpt"))
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if !strings.Contains(out, "SOURCE=environment") {
		t.Errorf("expected environment fallback, got: %s", out)
	}
	if !strings.HasSuffix(out, "2.4") {
		t.Errorf("expected bare major.minor suffix, got: %q", out)
	}
}

func TestResolveUnparseableVersion(t *testing.T) {
	t.Setenv(torchenv.VersionEnv, "nightly")

	code, out, errOut := runCLI(t, "resolve")
	if code != ExitErr {
		t.Fatalf("expected exit %d, got %d", ExitErr, code)
	}
	if out != "" {
		t.Errorf("expected no partial stdout, got: %q", out)
	}
	if !strings.Contains(errOut, "parsed") {
		t.Errorf("expected parse diagnostic, got: %s", errOut)
	}
}

func TestResolveNothingAvailable(t *testing.T) {
	t.Setenv(torchenv.VersionEnv, "")

	code, out, errOut := runCLI(t,
		"--python", filepath.Join(t.TempDir(), "no-such-python"),
		"resolve", filepath.Join(t.TempDir(), "nope.ckpt"))
	if code != ExitErr {
		t.Fatalf("expected exit %d, got %d", ExitErr, code)
	}
	if out != "" {
		t.Errorf("expected no partial stdout, got: %q", out)
	}
	if !strings.Contains(errOut, "could not determine torch version") {
		t.Errorf("expected unresolved diagnostic, got: %s", errOut)
	}
}

const cliSampleTable = `# Row h
0.05 0.0 0.0 0.0 0.0 0.0 0.0 0.0
0.15 0.1 0.2 0.3 0.4 0.5 0.6 0.7
2.75 3.1 12.4 1.6 4.2 1.2 2.8 9.9
`

func TestRDFCommand(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "rdf_tip3p.xvg")
	candPath := filepath.Join(dir, "rdf_mlp.xvg")
	for _, p := range []string{refPath, candPath} {
		if err := os.WriteFile(p, []byte(cliSampleTable), 0644); err != nil {
			t.Fatal(err)
		}
	}
	outPath := filepath.Join(dir, "comparison.png")

	code, out, errOut := runCLI(t, "--output", outPath, "rdf", refPath, candPath)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", ExitOK, code, errOut)
	}
	if !strings.Contains(out, outPath) {
		t.Errorf("expected output path echoed, got: %s", out)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected plot file: %v", err)
	}
}

func TestRDFCommandArgErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "rdf", "only-one.xvg")
	if code != ExitErr {
		t.Fatalf("expected exit %d, got %d", ExitErr, code)
	}
	if !strings.Contains(errOut, "rdf requires") {
		t.Errorf("expected usage diagnostic, got: %s", errOut)
	}
}

func TestExternCommandDefaults(t *testing.T) {
	code, out, _ := runCLI(t, "extern")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	expected := "cuequivariance\ncuequivariance_torch\n"
	if out != expected {
		t.Errorf("expected default modules, got: %q", out)
	}
}

func TestExternCommandManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extern.yml")
	payload := "modules:\n  - e3nn\n  - nequip.model\n  - e3nn\n"
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	code, out, _ := runCLI(t, "extern", path)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if out != "e3nn\nnequip.model\n" {
		t.Errorf("expected deduped sorted modules, got: %q", out)
	}
}
