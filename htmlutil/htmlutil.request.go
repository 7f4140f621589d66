package htmlutil

import (
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// IsAjaxRequest reports whether r was sent by XMLHttpRequest, based on the
// X-Requested-With header.
func IsAjaxRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderRequestedWith))) == RequestedWithXHR
}

// URLOptions controls which parts CurrentURL removes.
type URLOptions struct {
	// RemoveScriptName strips "/<script>" (the base name of ScriptName) and
	// the query string, and forces a trailing slash.
	RemoveScriptName bool

	// RemoveQueryString strips the query string on its own.
	RemoveQueryString bool

	// RemovePathInfo strips PathInfo, the suffix after the script such as
	// "/download/file" in "index.php/download/file".
	RemovePathInfo bool

	// ScriptName is the entry script, e.g. "/site/index.php". Optional.
	ScriptName string

	// PathInfo is the extra path after the script. Optional.
	PathInfo string
}

// DefaultURLOptions removes script name, query string and path info.
func DefaultURLOptions() URLOptions {
	return URLOptions{
		RemoveScriptName:  true,
		RemoveQueryString: true,
		RemovePathInfo:    true,
	}
}

// Scheme returns "https" for TLS requests or requests forwarded as https.
func Scheme(r *http.Request) string {
	if r.TLS != nil {
		return SchemeHTTPS
	}
	if strings.EqualFold(r.Header.Get(HeaderForwardedProto), SchemeHTTPS) {
		return SchemeHTTPS
	}
	return SchemeHTTP
}

// CurrentURL rebuilds the URL of r as scheme://host[:port]/uri. Default ports
// 80 and 443 are omitted.
func CurrentURL(r *http.Request, opts URLOptions) string {
	if r == nil {
		return ""
	}

	host := r.Host
	port := ""
	if h, p, err := net.SplitHostPort(r.Host); err == nil {
		host = h
		port = p
	}
	if port == DefaultPortHTTP || port == DefaultPortHTTPS {
		port = ""
	}

	uri := r.RequestURI
	if r.URL != nil {
		uri = r.URL.RequestURI()
	}

	page := Scheme(r) + "://" + host
	if port != "" {
		page += ":" + port
	}
	page += uri

	rawQuery := ""
	if r.URL != nil {
		rawQuery = r.URL.RawQuery
	}

	if opts.RemoveScriptName {
		if opts.ScriptName != "" {
			page = strings.ReplaceAll(page, "/"+path.Base(opts.ScriptName), "")
		}
		page = strings.TrimRight(page, "/") + "/"
	}

	if (opts.RemoveScriptName || opts.RemoveQueryString) && rawQuery != "" {
		page = strings.ReplaceAll(page, "?"+rawQuery, "")
		if opts.RemoveScriptName {
			page = strings.TrimRight(page, "/") + "/"
		}
	}

	if opts.RemovePathInfo && opts.PathInfo != "" {
		page = strings.ReplaceAll(page, opts.PathInfo, "")
	}

	return page
}

// AddURLParameter merges params into the query string of r, overriding
// existing values, and returns the new query string. With addCurrentURL the
// current URL (see DefaultURLOptions) is prepended.
func AddURLParameter(r *http.Request, params map[string]string, addCurrentURL bool) string {
	values := url.Values{}
	if r != nil && r.URL != nil {
		for k, v := range r.URL.Query() {
			values[k] = append([]string(nil), v...)
		}
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values.Set(k, params[k])
	}

	query := values.Encode()
	if !addCurrentURL {
		return query
	}
	return CurrentURL(r, DefaultURLOptions()) + "?" + query
}

// ParamSource selects where Param* helpers read values from.
type ParamSource int

const (
	// SourceQuery reads from the URL query string.
	SourceQuery ParamSource = iota
	// SourceForm reads from the posted form body.
	SourceForm
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

func rawParam(r *http.Request, name string, source ParamSource) string {
	if r == nil {
		return ""
	}
	if source == SourceForm {
		return r.PostFormValue(name)
	}
	if r.URL == nil {
		return ""
	}
	return r.URL.Query().Get(name)
}

// ParamString returns the named parameter with HTML tags stripped and
// surrounding spaces trimmed, or def when it is empty.
func ParamString(r *http.Request, name, def string, source ParamSource) string {
	v := strings.TrimSpace(tagRe.ReplaceAllString(rawParam(r, name, source), ""))
	if v == "" {
		return strings.TrimSpace(def)
	}
	return v
}

// ParamBool returns the named parameter as a boolean. "1", "true", "on" and
// "yes" are true; a missing, false or invalid value returns def.
func ParamBool(r *http.Request, name string, def bool, source ParamSource) bool {
	switch strings.ToLower(strings.TrimSpace(rawParam(r, name, source))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return def
	}
}

// ParamInt returns the named parameter as an integer, or def when it is
// missing, zero or not an integer.
func ParamInt(r *http.Request, name string, def int, source ParamSource) int {
	n, err := strconv.Atoi(strings.TrimSpace(rawParam(r, name, source)))
	if err != nil || n == 0 {
		return def
	}
	return n
}
