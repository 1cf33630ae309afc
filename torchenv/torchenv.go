package torchenv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cli/safeexec"

	"github.com/mlp-tools/potkit/logging"
)

// VersionEnv short-circuits the interpreter probe when set. CI images
// without a Python toolchain export the torch version here.
const VersionEnv = "TORCH_VERSION"

// ErrRuntimeUnavailable means no importable torch runtime was found.
var ErrRuntimeUnavailable = errors.New("torch runtime unavailable")

// Prober reports the active runtime's version identifier.
type Prober interface {
	Version(ctx context.Context) (string, error)
}

// PythonProber asks a Python interpreter for torch.__version__. Importing
// torch is slow on first call; that cost is accepted, the probe runs at
// most once per invocation.
type PythonProber struct {
	// Python is the interpreter to use. Empty means python3 from PATH,
	// falling back to python.
	Python string
	Log    *logging.Logger
}

var _ Prober = (*PythonProber)(nil)

const probeExpr = "import torch; print(torch.__version__)"

func (p *PythonProber) Version(ctx context.Context) (string, error) {
	if v := strings.TrimSpace(os.Getenv(VersionEnv)); v != "" {
		if p.Log != nil {
			p.Log.Debug("torch version taken from environment variable", "var", VersionEnv)
		}
		return v, nil
	}

	bin, err := p.interpreter()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-c", probeExpr)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if p.Log != nil {
		p.Log.Debug("probing torch runtime", "interpreter", bin)
	}
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrRuntimeUnavailable, bin, msg)
	}

	v := strings.TrimSpace(stdout.String())
	if v == "" {
		return "", fmt.Errorf("%w: %s printed no version", ErrRuntimeUnavailable, bin)
	}
	return v, nil
}

// interpreter resolves the Python binary to run. Explicit paths are used
// as-is; bare names go through safeexec so a binary in the working
// directory is never picked up.
func (p *PythonProber) interpreter() (string, error) {
	if p.Python != "" {
		if strings.ContainsRune(p.Python, os.PathSeparator) {
			if _, err := os.Stat(p.Python); err != nil {
				return "", err
			}
			return p.Python, nil
		}
		return safeexec.LookPath(p.Python)
	}

	for _, name := range []string{"python3", "python"} {
		if bin, err := safeexec.LookPath(name); err == nil {
			return bin, nil
		}
	}
	return "", errors.New("no python interpreter in PATH")
}
