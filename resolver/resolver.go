package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/mlp-tools/potkit/logging"
)

var (
	// ErrUnresolved means no source produced a version string.
	ErrUnresolved = errors.New("torch version could not be determined")
	// ErrUnparseable means a version string was found but does not start
	// with a major.minor numeric prefix.
	ErrUnparseable = errors.New("torch version could not be parsed")
)

// MajorMinorRegex matches the leading numeric prefix of a torch version
// string, e.g. "2.8.0" or "2.8.0+cu118".
var MajorMinorRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.`)

// ParseMajorMinor extracts the "major.minor" prefix from a raw version
// string. Patch level and build tags are discarded.
func ParseMajorMinor(raw string) (string, error) {
	m := MajorMinorRegex.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}
	return m[1] + "." + m[2], nil
}

// SourceTag records which fallback produced a resolution.
type SourceTag string

const (
	SourceCheckpoint  SourceTag = "checkpoint"
	SourceEnvironment SourceTag = "environment"
)

// Source is one step of the fallback chain. An error return means this
// source has no answer; the chain swallows it and moves on.
type Source interface {
	Tag() SourceTag
	Version(ctx context.Context) (string, error)
}

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	// Version is the raw version string, build tag included.
	Version string
	// MajorMinor is the parsed numeric prefix.
	MajorMinor string
	// Source tags which fallback produced the version.
	Source SourceTag
}

// Resolver tries an ordered list of sources and stops at the first one
// that yields a version.
type Resolver struct {
	sources []Source
	log     *logging.Logger
}

func New(sources []Source, log *logging.Logger) *Resolver {
	return &Resolver{sources: sources, log: log}
}

// Resolve walks the fallback chain. Source failures are recoverable and
// logged at debug level; an unparseable version string is fatal because a
// version was found, its shape is just unrecognized.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	for _, s := range r.sources {
		raw, err := s.Version(ctx)
		if err != nil {
			if r.log != nil {
				r.log.Debug("source yielded nothing", "source", string(s.Tag()), "error", err)
			}
			continue
		}

		mm, err := ParseMajorMinor(raw)
		if err != nil {
			return nil, err
		}
		return &Resolution{Version: raw, MajorMinor: mm, Source: s.Tag()}, nil
	}
	return nil, ErrUnresolved
}
