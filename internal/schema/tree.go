package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"invoicedesk/internal/domain/settings"
)

// SplitKeyPath splits a dot-separated key path into its segments.
func SplitKeyPath(keyPath string) ([]string, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("%w: empty key path", settings.ErrInvalidKeyPath)
	}
	parts := strings.Split(keyPath, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", settings.ErrInvalidKeyPath, keyPath)
		}
	}
	return parts, nil
}

// Section returns the top-level section a key path belongs to.
func Section(keyPath string) string {
	section, _, _ := strings.Cut(keyPath, ".")
	return section
}

// Lookup walks tree along keyPath.
func Lookup(tree map[string]any, keyPath string) (any, bool) {
	parts, err := SplitKeyPath(keyPath)
	if err != nil {
		return nil, false
	}
	var cur any = tree
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone deep-copies JSON-shaped values. Other values are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// Normalize converts v into the shape encoding/json produces when decoding
// into an interface: float64 numbers, map[string]any objects, []any arrays.
func Normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mustNormalize(tree map[string]any) map[string]any {
	v, err := Normalize(tree)
	if err != nil {
		panic(fmt.Sprintf("schema: default tree is not JSON encodable: %v", err))
	}
	return v.(map[string]any)
}
