package checkpoint

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/mholt/archives"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"

	"github.com/mlp-tools/potkit/logging"
)

// ZipLoader reads torch serialized archives. Current checkpoints are zip
// containers holding a pickled top-level dict (data.pkl) next to a version
// marker; older ones are bare pickle streams. Both are handed to the pickle
// machinery, the container sniff is diagnostic only.
type ZipLoader struct {
	Log *logging.Logger
}

var _ Loader = (*ZipLoader)(nil)

func (l *ZipLoader) Load(ctx context.Context, path string) (*Tree, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if l.Log != nil {
		if desc, err := Describe(ctx, path); err != nil {
			l.Log.Debug("container sniff failed", "path", path, "error", err)
		} else {
			l.Log.Debug("container identified",
				"path", path, "format", desc.Format,
				"entries", desc.Entries, "torch_archive", desc.TorchArchive)
		}
	}

	obj, err := pytorch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	root, _ := normalize(obj).(map[string]any)
	tree := NewTree(root)
	if l.Log != nil {
		l.Log.Debug("artifact loaded", "path", path, "top_level_keys", tree.Len())
	}
	return tree, nil
}

// Description summarizes an artifact's container, for debug output.
type Description struct {
	// Format is the identified archive extension, e.g. ".zip".
	Format string
	// Entries counts files inside the container.
	Entries int
	// TorchArchive reports whether the container carries the data.pkl and
	// version markers of a torch serialized archive.
	TorchArchive bool
}

// Describe identifies the artifact's container format and checks it for
// torch archive markers without unpickling anything.
func Describe(ctx context.Context, name string) (*Description, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format, stream, err := archives.Identify(ctx, name, f)
	if err != nil {
		return nil, fmt.Errorf("identify %s: %w", name, err)
	}

	desc := &Description{Format: format.Extension()}

	ex, ok := format.(archives.Extractor)
	if !ok {
		return desc, nil
	}

	var hasData, hasVersion bool
	err = ex.Extract(ctx, stream, func(ctx context.Context, fi archives.FileInfo) error {
		if fi.IsDir() {
			return nil
		}
		desc.Entries++
		switch path.Base(fi.NameInArchive) {
		case "data.pkl":
			hasData = true
		case "version":
			hasVersion = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", name, err)
	}

	desc.TorchArchive = hasData && hasVersion
	return desc, nil
}

// normalize converts pickle container types into plain Go maps and slices
// so lookups do not depend on the unpickler's internals. Unknown values
// (tensors, storages) pass through untouched.
func normalize(v any) any {
	switch t := v.(type) {
	case *types.Dict:
		m := make(map[string]any, t.Len())
		for _, entry := range *t {
			if key, ok := entry.Key.(string); ok {
				m[key] = normalize(entry.Value)
			}
		}
		return m
	case *types.OrderedDict:
		m := make(map[string]any, len(t.Map))
		for key, entry := range t.Map {
			if ks, ok := key.(string); ok {
				m[ks] = normalize(entry.Value)
			}
		}
		return m
	case *types.List:
		s := make([]any, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			s = append(s, normalize(t.Get(i)))
		}
		return s
	case *types.Tuple:
		s := make([]any, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			s = append(s, normalize(t.Get(i)))
		}
		return s
	default:
		return v
	}
}
