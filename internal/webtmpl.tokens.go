package internal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Token is a single built-in placeholder and its value.
type Token struct {
	Name  string
	Value string
}

var markerRe = regexp.MustCompile(regexp.QuoteMeta(TokenOpen) + `[^{}\s]+` + regexp.QuoteMeta(TokenClose))

// CountMarkers returns how many {{ name }} placeholders text holds.
func CountMarkers(text string) int {
	return len(markerRe.FindAllStringIndex(text, -1))
}

// Marker returns the literal placeholder for name, e.g. "{{ name }}".
func Marker(name string) string {
	return TokenOpen + name + TokenClose
}

// Substitute replaces the built-in tokens in order, then every user key
// whose marker appears in text. User keys are applied in sorted order so
// the output does not depend on map iteration. Markers without a value are
// left verbatim. The result is trimmed of TrimCutset.
func Substitute(text string, builtins []Token, vars map[string]any) string {
	for _, tok := range builtins {
		text = strings.ReplaceAll(text, Marker(tok.Name), tok.Value)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		marker := Marker(k)
		if !strings.Contains(text, marker) {
			continue
		}
		text = strings.ReplaceAll(text, marker, Stringify(vars[k]))
	}

	return strings.Trim(text, TrimCutset)
}

// Stringify converts a user value to the text inserted in a template.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return BoolTrue
		}
		return BoolFalse
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}
