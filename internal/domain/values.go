package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// decodeJSON decodes data into v. Numbers held in untyped values come out
// as int when integral and float64 otherwise, matching what the YAML
// decoder produces for the same document.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if p, ok := v.(*any); ok {
		nv, err := normalizeValue(*p)
		if err != nil {
			return err
		}
		*p = nv
	}
	return nil
}

// normalizeValue rewrites a decoded value so that it encodes as JSON:
// json.Number becomes int or float64, and mappings with scalar keys of
// other types become map[string]any. Maps and slices are rewritten in
// place.
func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", t, err)
		}
		return f, nil
	case map[string]any:
		for k, e := range t {
			nv, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			t[k] = nv
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			key, err := mappingKey(k)
			if err != nil {
				return nil, err
			}
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("duplicate key %q", key)
			}
			nv, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = nv
		}
		return out, nil
	case []any:
		for i, e := range t {
			nv, err := normalizeValue(e)
			if err != nil {
				return nil, err
			}
			t[i] = nv
		}
		return t, nil
	default:
		return v, nil
	}
}

// mappingKey renders a scalar mapping key as the string JSON would use
func mappingKey(k any) (string, error) {
	switch k := k.(type) {
	case string:
		return k, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(k), nil
	default:
		return "", fmt.Errorf("unsupported mapping key %v (%T)", k, k)
	}
}
