package webtmpl

// Mode is the output mode of an Engine. It decides which conditional mode
// blocks survive a render.
type Mode string

// Supported output modes
const (
	ModeHTML Mode = "html"
	ModeRaw  Mode = "raw"
)

// DefaultMode is used when no mode is given.
const DefaultMode = ModeHTML

// SupportedModes lists every mode accepted by New and SetMode, in a fixed order.
var SupportedModes = []Mode{ModeHTML, ModeRaw}

// String returns the mode name
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the supported modes
func (m Mode) Valid() bool {
	for _, s := range SupportedModes {
		if m == s {
			return true
		}
	}
	return false
}

// Template file constants
const (
	DefaultExtension = ".html"
	DefaultFolder    = "."
	DefaultIndexName = "index"
)

// DefaultMaxInclusionPasses bounds the inclusion fixed-point loop.
// Use WithMaxInclusionPasses(0) for an unbounded loop.
const DefaultMaxInclusionPasses = 64

// Built-in token names, always available to templates
const (
	TokenURL   = "url"
	TokenDebug = "debug"
)

// Debug flag token values
const (
	DebugValueOn  = "1"
	DebugValueOff = "0"
)

// Content types used by the HTTP handler
const (
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypeText   = "text/plain; charset=utf-8"
	HeaderContentType = "Content-Type"
)

// Metric names and labels
const (
	MetricRendersTotal       = "webtmpl_renders_total"
	MetricRendersHelp        = "Total number of template renders by outcome."
	MetricRenderDuration     = "webtmpl_render_duration_seconds"
	MetricRenderDurationHelp = "Duration of template renders in seconds."
	MetricLabelOutcome       = "outcome"
	OutcomeSuccess           = "success"
	OutcomeNotFound          = "not_found"
	OutcomeError             = "error"
)

// Watcher constants
const (
	DefaultWatchDebounceMillis = 100
	watchEventBuffer           = 64
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyTemplateName = "template_name"
	MetaKeyPath         = "path"
	MetaKeyFolder       = "folder"
	MetaKeyMode         = "mode"
	MetaKeySupported    = "supported"
	MetaKeyMaxPasses    = "max_passes"
)

// Log messages
const (
	LogMsgEngineCreated    = "template engine created"
	LogMsgModeChanged      = "output mode changed"
	LogMsgShowStart        = "rendering template"
	LogMsgShowEnd          = "template rendered"
	LogMsgTemplateResolved = "template resolved"
	LogMsgTemplateMissing  = "template file missing"
	LogMsgHandlerRender    = "handler render"
	LogMsgHandlerFailed    = "handler render failed"
	LogMsgCacheHit         = "template cache hit"
	LogMsgCacheInvalidated = "template cache invalidated"
	LogMsgWatcherStarted   = "template watcher started"
	LogMsgWatcherStopped   = "template watcher stopped"
	LogMsgWatcherEvent     = "template change detected"
	LogMsgWatcherError     = "template watcher error"
	LogMsgWatchDirFailed   = "failed to watch directory"
)

// Log field names
const (
	LogFieldTemplate = "template"
	LogFieldPath     = "path"
	LogFieldFolder   = "folder"
	LogFieldMode     = "mode"
	LogFieldAjax     = "ajax"
	LogFieldLength   = "length"
	LogFieldStatus   = "status"
	LogFieldEvents   = "events"
	LogFieldOp       = "op"
)
