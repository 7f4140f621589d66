package internal

// Inclusion marker syntax: {{ include('Partials/nav') }}
const (
	InclusionPattern = `\{\{ include\('([^']*)'\) \}\}`
)

// Conditional block syntax:
//
//	<!-- @if_html_start-->
//	...
//	<!-- @if_html_end-->
const (
	BlockStartPrefix = "<!-- @if_"
	BlockStartSuffix = "_start"
	BlockEndPrefix   = "@if_"
	BlockEndSuffix   = "_end-->"
)

// Request block tags
const (
	RequestTagFull = "full"
	RequestTagAjax = "ajax"
)

// Placeholder token syntax: {{ name }}
const (
	TokenOpen  = "{{ "
	TokenClose = " }}"
)

// TrimCutset is trimmed from both ends of a rendered template. Non-breaking
// spaces are content and stay.
const TrimCutset = " \t\n\r\x00\x0B"

// Stringified boolean values for token substitution
const (
	BoolTrue  = "1"
	BoolFalse = "0"
)

// Error messages
const (
	ErrMsgInclusionPasses = "inclusion markers remain after maximum passes"
	ErrMsgNilLoader       = "inclusion loader cannot be nil"
)

// Log message constants
const (
	LogMsgInclusionStart = "processing inclusions"
	LogMsgInclusionPass  = "inclusion pass"
	LogMsgInclusionEnd   = "inclusions settled"
	LogMsgInclusionLimit = "inclusion pass limit reached"
	LogMsgModeBlocks     = "mode blocks removed"
	LogMsgRequestBlocks  = "request blocks removed"
	LogMsgTokensReplaced = "tokens replaced"
)

// Log field names
const (
	LogFieldPass     = "pass"
	LogFieldMarkers  = "markers"
	LogFieldTags     = "tags"
	LogFieldRemoved  = "removed"
	LogFieldMode     = "mode"
	LogFieldAjax     = "ajax"
	LogFieldReplaced = "replaced"
	LogFieldLength   = "length"
)
