package main

import "time"

// Command names
const (
	CmdNameRender  = "render"
	CmdNameServe   = "serve"
	CmdNameVersion = "version"
)

// Flag names - long form
const (
	FlagConfig     = "config"
	FlagFolder     = "folder"
	FlagMode       = "mode"
	FlagExtension  = "extension"
	FlagMaxPasses  = "max-passes"
	FlagVar        = "var"
	FlagVarsFile   = "vars-file"
	FlagAjax       = "ajax"
	FlagURL        = "url"
	FlagDebug      = "debug"
	FlagOutput     = "output"
	FlagAddr       = "addr"
	FlagCache      = "cache"
	FlagLogFolder  = "log-folder"
	FlagErrorPage  = "error-template"
	FlagFormat     = "format"
	FlagIndex      = "index"
	FlagSessPrefix = "session-prefix"
)

// Flag names - short form
const (
	FlagFolderShort   = "d"
	FlagModeShort     = "m"
	FlagVarShort      = "v"
	FlagVarsFileShort = "f"
	FlagOutputShort   = "o"
	FlagAddrShort     = "a"
	FlagFormatShort   = "F"
)

// Configuration keys
const (
	KeyTemplatesFolder    = "templates.folder"
	KeyTemplatesMode      = "templates.mode"
	KeyTemplatesExtension = "templates.extension"
	KeyTemplatesMaxPasses = "templates.max_inclusion_passes"
	KeyTemplatesCache     = "templates.cache"
	KeyTemplatesIndex     = "templates.index"
	KeyServerAddr         = "server.addr"
	KeyLogFolder          = "log.folder"
	KeyLogDebug           = "log.debug"
	KeyLogPrefix          = "log.prefix"
	KeyLogTimezone        = "log.timezone"
	KeySessionPrefix      = "session.prefix"
	KeySessionMinutes     = "session.minutes"
	KeyErrorTemplate      = "error.template"
)

// Configuration sources
const (
	ConfigName      = ".webtmpl"
	ConfigType      = "yaml"
	ConfigEnvFile   = "WEBTMPL_CONFIG_FILE"
	ConfigEnvPrefix = "WEBTMPL"
)

// Flag default values
const (
	FlagDefaultOutput  = "-" // stdout
	FlagDefaultFormat  = "text"
	FlagDefaultAddr    = ":8080"
	FlagDefaultLogDir  = "logs"
	FlagDefaultMinutes = 60
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeInputError = 4
	ExitCodeNotFound   = 5
)

// Server timings
const (
	ServerReadHeaderTimeout = 5 * time.Second
	ServerReadTimeout       = 10 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 60 * time.Second
	ServerShutdownTimeout   = 10 * time.Second
)

// HTTP paths
const (
	PathMetrics = "/metrics"
	PathRoot    = "/"
)

// Error messages - ALL must be constants
const (
	ErrMsgInvalidVar        = "invalid --var, expected key=value"
	ErrMsgReadVarsFailed    = "failed to read vars file"
	ErrMsgParseVarsFailed   = "failed to parse vars file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgEngineFailed      = "failed to create engine"
	ErrMsgRenderFailed      = "render failed"
	ErrMsgTemplateNotFound  = "template not found"
	ErrMsgLoggerFailed      = "failed to set up logging"
	ErrMsgErrorPageFailed   = "failed to set up error page"
	ErrMsgWatcherFailed     = "failed to watch templates"
	ErrMsgServeFailed       = "server failed"
	ErrMsgConfigFailed      = "failed to read config file"
	ErrMsgInvalidFormat     = "invalid output format"
)

// Log messages
const (
	LogMsgServerStarting = "server starting"
	LogMsgServerStopping = "server shutting down"
	LogMsgServerStopped  = "server stopped"
	LogMsgTemplateChange = "templates changed"
	LogFieldAddr         = "addr"
	LogFieldFolder       = "folder"
	LogFieldPaths        = "paths"
)

// Help text
const (
	HelpRootShort = "Render flat HTML templates"
	HelpRootLong  = `webtmpl renders flat HTML templates with inclusions, mode and
request conditional blocks and placeholders.

Configuration is read from flags, WEBTMPL_* environment variables and
.webtmpl.yml in the current directory, in that order of precedence.`

	HelpRenderShort   = "Render one template"
	HelpRenderExample = `  webtmpl render login --folder templates --var title=Sign-in
  webtmpl render login -f vars.yml --ajax -o out/login.html
  webtmpl render page --mode raw --url https://example.com/`

	HelpServeShort   = "Serve templates over HTTP"
	HelpServeExample = `  webtmpl serve --folder templates --addr :8080 --cache`

	HelpVersionShort = "Show version information"
)

// Version output
const (
	VersionTextTemplate = "webtmpl version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// CLI metadata
const (
	CLIName = "webtmpl"
)

// Format string constants
const (
	FmtErrorWithCause = "%s: %v\n"
	FmtNewline        = "\n"
	VarSeparator      = "="
)
