package webtmpl

import (
	"context"
	"net/http"

	"github.com/itsatony/go-webtmpl/htmlutil"
)

// RequestInfo describes the request a template is rendered for.
type RequestInfo interface {
	// IsAjaxRequest reports whether the request came from XMLHttpRequest.
	IsAjaxRequest() bool

	// CurrentURL returns the URL of the request, optionally without the
	// script name.
	CurrentURL(stripScriptName bool) string
}

// DebugFlag exposes the application debug mode to templates ({{ debug }}).
type DebugFlag interface {
	DebugMode() bool
}

// StaticDebug is a fixed DebugFlag.
type StaticDebug bool

// DebugMode returns the fixed value.
func (d StaticDebug) DebugMode() bool {
	return bool(d)
}

// StaticRequest is a RequestInfo with fixed values, used outside HTTP
// (CLI rendering, tests).
type StaticRequest struct {
	Ajax bool
	URL  string
}

// IsAjaxRequest returns the fixed ajax flag.
func (r StaticRequest) IsAjaxRequest() bool {
	return r.Ajax
}

// CurrentURL returns the fixed URL.
func (r StaticRequest) CurrentURL(bool) string {
	return r.URL
}

// HTTPRequest adapts an *http.Request.
type HTTPRequest struct {
	req        *http.Request
	scriptName string
}

// NewHTTPRequest wraps r. scriptName is the entry script stripped from
// CurrentURL, it can be empty.
func NewHTTPRequest(r *http.Request, scriptName string) *HTTPRequest {
	return &HTTPRequest{req: r, scriptName: scriptName}
}

// IsAjaxRequest inspects the X-Requested-With header.
func (h *HTTPRequest) IsAjaxRequest() bool {
	return htmlutil.IsAjaxRequest(h.req)
}

// CurrentURL rebuilds the request URL without query string.
func (h *HTTPRequest) CurrentURL(stripScriptName bool) string {
	return htmlutil.CurrentURL(h.req, htmlutil.URLOptions{
		RemoveScriptName:  stripScriptName,
		RemoveQueryString: true,
		RemovePathInfo:    true,
		ScriptName:        h.scriptName,
	})
}

type requestKey struct{}

// WithRequest returns a context carrying info for Engine.Show.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey{}, info)
}

// RequestFromContext returns the RequestInfo stored by WithRequest.
func RequestFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestKey{}).(RequestInfo)
	return info, ok && info != nil
}
