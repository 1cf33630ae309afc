package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mlp-tools/potkit/checkpoint"
	"github.com/mlp-tools/potkit/logging"
	"github.com/mlp-tools/potkit/torchenv"
)

// ErrArtifactUnreadable means the artifact file is missing or failed to
// deserialize. The chain recovers from it by falling through.
var ErrArtifactUnreadable = errors.New("artifact unreadable")

// CheckpointSource inspects a serialized training artifact for embedded
// version metadata. An artifact that loads but carries no metadata answers
// with the active runtime's version instead: being loadable in this
// environment is taken as version compatibility. That is an approximation,
// not a guarantee.
type CheckpointSource struct {
	Path   string
	Loader checkpoint.Loader
	// Proxy supplies the version for the metadata-less case above.
	Proxy torchenv.Prober
	Log   *logging.Logger
}

var _ Source = (*CheckpointSource)(nil)

func (s *CheckpointSource) Tag() SourceTag {
	return SourceCheckpoint
}

func (s *CheckpointSource) Version(ctx context.Context) (string, error) {
	if s.Path == "" {
		return "", fmt.Errorf("%w: no artifact path given", ErrArtifactUnreadable)
	}
	if _, err := os.Stat(s.Path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactUnreadable, err)
	}

	tree, err := s.Loader.Load(ctx, s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactUnreadable, err)
	}

	if v, ok := tree.TorchVersion(); ok {
		if s.Log != nil {
			s.Log.Debug("version found in artifact metadata", "path", s.Path, "version", v)
		}
		return v, nil
	}

	if s.Log != nil {
		s.Log.Debug("artifact carries no version metadata, proxying active runtime", "path", s.Path)
	}
	return s.Proxy.Version(ctx)
}

// EnvironmentSource asks the active runtime for its own version.
type EnvironmentSource struct {
	Prober torchenv.Prober
}

var _ Source = (*EnvironmentSource)(nil)

func (s *EnvironmentSource) Tag() SourceTag {
	return SourceEnvironment
}

func (s *EnvironmentSource) Version(ctx context.Context) (string, error) {
	return s.Prober.Version(ctx)
}
