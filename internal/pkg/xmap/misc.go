package xmap

import (
	"maps"
	"slices"
	"time"

	"dario.cat/mergo"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// GetString extracts a string value from a map[string]any.
func GetString(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}

	v, ok := m[key]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// GetBool extracts a bool value from a map[string]any.
func GetBool(m map[string]any, key string) (bool, bool) {
	if m == nil {
		return false, false
	}

	v, ok := m[key]
	if !ok {
		return false, false
	}

	b, ok := v.(bool)

	return b, ok
}

// GetTime extracts a timestamp from a map[string]any, accepting time values
// and RFC 3339 strings.
func GetTime(m map[string]any, key string) (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}

	v, ok := m[key]
	if !ok || v == nil {
		return time.Time{}, false
	}

	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)

	return keys
}

// Merge returns a copy of dst with src merged in, src values win. Nested
// maps are merged recursively, everything else is replaced.
func Merge(dst, src map[string]any) (map[string]any, error) {
	out := maps.Clone(dst)
	if out == nil {
		out = map[string]any{}
	}

	if err := mergo.Merge(&out, src, mergo.WithOverride); err != nil {
		return nil, err
	}

	return out, nil
}
