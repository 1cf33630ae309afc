package checkpoint

import (
	"context"
	"sort"
)

// Loader is the interface that wraps artifact metadata loading.
type Loader interface {
	// Load opens the artifact at path and returns its top-level
	// key-value structure.
	Load(ctx context.Context, path string) (*Tree, error)
}

// Tree is a normalized view of an artifact's top-level mapping. A nil or
// empty tree is valid and answers every lookup negatively; an artifact
// whose payload is not a mapping loads as an empty tree.
type Tree struct {
	root map[string]any
}

// NewTree builds a Tree over an already-normalized mapping.
func NewTree(root map[string]any) *Tree {
	return &Tree{root: root}
}

// Lookup walks nested mappings by key and reports whether the full path
// exists.
func (t *Tree) Lookup(path ...string) (any, bool) {
	if t == nil || len(path) == 0 {
		return nil, false
	}
	var cur any = t.root
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Len returns the number of top-level keys.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.root)
}

const versionKey = "torch_version"

// TorchVersion searches the provenance locations a training checkpoint may
// carry, in priority order: hyper_parameters, metadata, then any callback
// entry. Callback entries are visited in sorted key order so repeated loads
// of the same artifact agree.
func (t *Tree) TorchVersion() (string, bool) {
	if v, ok := t.stringAt("hyper_parameters", versionKey); ok {
		return v, true
	}
	if v, ok := t.stringAt("metadata", versionKey); ok {
		return v, true
	}

	raw, ok := t.Lookup("callbacks")
	if !ok {
		return "", false
	}
	callbacks, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	names := make([]string, 0, len(callbacks))
	for name := range callbacks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry, ok := callbacks[name].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := entry[versionKey].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (t *Tree) stringAt(path ...string) (string, bool) {
	raw, ok := t.Lookup(path...)
	if !ok {
		return "", false
	}
	v, ok := raw.(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
