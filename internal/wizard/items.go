package wizard

import (
	"fmt"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// ItemIDKey is the key holding a list item's generated id.
const ItemIDKey = "id"

// AppendItem appends item to the list at path and returns the id assigned
// to it. Any id already on item is replaced.
func (w *Wizard[C]) AppendItem(path string, item any) (string, error) {
	fields, err := toMap(item)
	if err != nil {
		return "", deckerrors.Invalidf("item: %v", err)
	}
	id := w.opts.IDs.NewID()
	fields[ItemIDKey] = id

	err = w.editList(path, func(items []any) ([]any, error) {
		return append(items, fields), nil
	})
	if err != nil {
		return "", err
	}
	w.log.Debug("item added", "path", path, "id", id)
	return id, nil
}

// UpdateItem merges patch into the list item with the given id. The id
// itself cannot be changed.
func (w *Wizard[C]) UpdateItem(path, id string, patch map[string]any) error {
	normalized, err := normalizePatch(patch)
	if err != nil {
		return err
	}
	delete(normalized, ItemIDKey)

	return w.editList(path, func(items []any) ([]any, error) {
		for _, it := range items {
			fields, ok := it.(map[string]any)
			if ok && itemID(fields) == id {
				if err := checkKinds(fields, normalized, path); err != nil {
					return nil, err
				}
				mergeInto(fields, normalized)
				return items, nil
			}
		}
		return nil, fmt.Errorf("item %q in %s: %w", id, path, deckerrors.ErrNotFound)
	})
}

// RemoveItem removes the list item with the given id. Siblings keep their
// order. Removing an unknown id changes nothing and returns ErrNotFound.
func (w *Wizard[C]) RemoveItem(path, id string) error {
	err := w.editList(path, func(items []any) ([]any, error) {
		kept := make([]any, 0, len(items))
		for _, it := range items {
			if fields, ok := it.(map[string]any); ok && itemID(fields) == id {
				continue
			}
			kept = append(kept, it)
		}
		if len(kept) == len(items) {
			return nil, fmt.Errorf("item %q in %s: %w", id, path, deckerrors.ErrNotFound)
		}
		return kept, nil
	})
	if err == nil {
		w.log.Debug("item removed", "path", path, "id", id)
	}
	return err
}

// editList applies edit to the list at path and re-decodes the config.
func (w *Wizard[C]) editList(path string, edit func([]any) ([]any, error)) error {
	if w.state.Phase == PhaseFinalized {
		return deckerrors.Invalidf("wizard is finalized")
	}
	keys, err := splitPath(path)
	if err != nil {
		return err
	}
	root, err := toMap(w.state.Config)
	if err != nil {
		return deckerrors.Wrap(err, "edit list")
	}

	parent := root
	for _, k := range keys[:len(keys)-1] {
		next, ok := parent[k].(map[string]any)
		if !ok {
			return deckerrors.Invalidf("config path %q is not an object", path)
		}
		parent = next
	}

	last := keys[len(keys)-1]
	var items []any
	switch v := parent[last].(type) {
	case nil:
	case []any:
		items = v
	default:
		return deckerrors.Invalidf("config path %q is not a list", path)
	}

	items, err = edit(items)
	if err != nil {
		return err
	}
	parent[last] = items

	cfg, err := fromMap[C](root)
	if err != nil {
		return err
	}
	w.state.Config = cfg
	w.touch()
	return nil
}

func itemID(fields map[string]any) string {
	id, _ := fields[ItemIDKey].(string)
	return id
}
