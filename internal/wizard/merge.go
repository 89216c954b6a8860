package wizard

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// toMap renders v through its yaml tags into a generic map.
func toMap(v any) (map[string]any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromMap decodes m into a fresh C, rejecting keys C does not declare.
func fromMap[C any](m map[string]any) (C, error) {
	var out C
	data, err := yaml.Marshal(m)
	if err != nil {
		return out, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return out, deckerrors.Invalidf("%v", err)
	}
	return out, nil
}

// clone deep-copies a config through yaml.
func clone[C any](cfg C) (C, error) {
	m, err := toMap(cfg)
	if err != nil {
		var zero C
		return zero, err
	}
	return fromMap[C](m)
}

// mergeInto deep-merges patch into dst. Nested maps merge key by key,
// everything else (scalars, lists) replaces the destination value.
func mergeInto(dst, patch map[string]any) {
	for k, pv := range patch {
		pm, pIsMap := pv.(map[string]any)
		dm, dIsMap := dst[k].(map[string]any)
		if pIsMap && dIsMap {
			mergeInto(dm, pm)
			continue
		}
		dst[k] = pv
	}
}

// checkKinds rejects patch values whose shape differs from the value
// already in base: a string where a number is expected, a scalar where an
// object is expected and so on. yaml would otherwise coerce scalars into
// string fields. Keys missing from base and nil values in base are left
// to the decoder.
func checkKinds(base, patch map[string]any, prefix string) error {
	for k, pv := range patch {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		bv, ok := base[k]
		if !ok || bv == nil || pv == nil {
			continue
		}
		if bm, isMap := bv.(map[string]any); isMap {
			pm, ok := pv.(map[string]any)
			if !ok {
				return deckerrors.Invalidf("%s: expected an object, got %s", path, kindOf(pv))
			}
			if err := checkKinds(bm, pm, path); err != nil {
				return err
			}
			continue
		}
		if want, got := kindOf(bv), kindOf(pv); want != got {
			return deckerrors.Invalidf("%s: expected %s, got %s", path, want, got)
		}
	}
	return nil
}

// kindOf names the shape of a yaml-decoded value. Integers and floats are
// both numbers since a zero float renders as "0".
func kindOf(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, uint64, float64:
		return "a number"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}

// normalizePatch turns an arbitrary patch value (structs, typed maps) into
// plain yaml-shaped data so it merges field by field.
func normalizePatch(patch map[string]any) (map[string]any, error) {
	m, err := toMap(patch)
	if err != nil {
		return nil, deckerrors.Invalidf("patch: %v", err)
	}
	return m, nil
}

// pathPatch builds {a: {b: {c: value}}} from "a.b.c".
func pathPatch(path string, value any) (map[string]any, error) {
	keys, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	var v any = value
	for i := len(keys) - 1; i >= 0; i-- {
		v = map[string]any{keys[i]: v}
	}
	return v.(map[string]any), nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, deckerrors.Invalidf("empty config path")
	}
	keys := strings.Split(path, ".")
	for _, k := range keys {
		if k == "" {
			return nil, deckerrors.Invalidf("malformed config path %q", path)
		}
	}
	return keys, nil
}
