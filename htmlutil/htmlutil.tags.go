package htmlutil

import (
	"sort"
	"strings"
)

// Link attribute constants
const (
	AttrRel         = "rel"
	AttrTarget      = "target"
	TargetBlank     = "_blank"
	RelNoopener     = "noopener"
	RelNoreferrer   = "noreferrer"
	CSSTagPrefix    = "<link"
	ScriptTagPrefix = "<script"
)

// LinkOptions tunes MakeLink.
type LinkOptions struct {
	// Secure adds rel="noopener noreferrer".
	Secure bool
	// RemoveTargetBlank drops target="_blank".
	RemoveTargetBlank bool
}

// DefaultLinkOptions enables both protections.
func DefaultLinkOptions() LinkOptions {
	return LinkOptions{Secure: true, RemoveTargetBlank: true}
}

// MakeLink builds <a href="url" ...>text</a>. Extra attributes are written
// in sorted key order.
func MakeLink(url, text string, extra map[string]string, opts LinkOptions) string {
	attrs := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		attrs[k] = v
	}

	if opts.RemoveTargetBlank && strings.TrimSpace(attrs[AttrTarget]) == TargetBlank {
		delete(attrs, AttrTarget)
	}

	if opts.Secure {
		rel := strings.Fields(attrs[AttrRel])
		if !containsString(rel, RelNoopener) {
			rel = append(rel, RelNoopener)
		}
		if !containsString(rel, RelNoreferrer) {
			rel = append(rel, RelNoreferrer)
		}
		attrs[AttrRel] = strings.Join(rel, " ")
	}

	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(url)
	b.WriteString(`"`)
	b.WriteString(formatAttributes(attrs))
	b.WriteString(">")
	b.WriteString(text)
	b.WriteString("</a>")
	return b.String()
}

// AddCSSTag wraps a stylesheet href in a <link> tag unless it already is one.
func AddCSSTag(style string) string {
	style = strings.TrimSpace(style)
	if strings.HasPrefix(style, CSSTagPrefix) {
		return style
	}
	return `<link rel="stylesheet" href="` + style + `" media="screen"/>`
}

// AddJSTag wraps a script src in a <script> tag unless it already is one.
func AddJSTag(script string) string {
	script = strings.TrimSpace(script)
	if strings.HasPrefix(script, ScriptTagPrefix) {
		return script
	}
	return `<script type="text/javascript" src="` + script + `"></script>`
}

// formatAttributes renders ` k="v"` pairs in sorted key order, dropping
// double quotes from values.
func formatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(attrs[k], `"`, ""))
		b.WriteString(`"`)
	}
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
