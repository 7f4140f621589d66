// Package maputil has helpers for nested maps and lists.
package maputil

import (
	"strings"
)

// PathSeparator splits the segments of a Get path.
const PathSeparator = "."

// JoinLines writes every item on its own line, each followed by "\n".
// A non-nil fn transforms items first.
func JoinLines(items []string, fn func(string) string) string {
	var b strings.Builder
	for _, item := range items {
		if fn != nil {
			item = fn(item)
		}
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

// Get returns the value at key in m. A key present as-is wins; otherwise it
// is split on "." and each segment walks one level of nested
// map[string]any. def is returned when any segment is missing.
//
//	Get(map[string]any{"db": map[string]any{"host": "x"}}, "db.host", nil) // "x"
func Get(m map[string]any, key string, def any) any {
	if m == nil {
		return def
	}
	if v, ok := m[key]; ok {
		return v
	}
	if !strings.Contains(key, PathSeparator) {
		return def
	}

	var current any = m
	for _, segment := range strings.Split(key, PathSeparator) {
		level, ok := current.(map[string]any)
		if !ok {
			return def
		}
		v, ok := level[segment]
		if !ok {
			return def
		}
		current = v
	}
	return current
}

// Transpose swaps the two levels of a nested map, so user→question→answer
// becomes question→user→answer.
func Transpose[V any](in map[string]map[string]V) map[string]map[string]V {
	out := make(map[string]map[string]V)
	for key, sub := range in {
		for subKey, v := range sub {
			if out[subKey] == nil {
				out[subKey] = make(map[string]V)
			}
			out[subKey][key] = v
		}
	}
	return out
}
