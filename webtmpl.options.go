package webtmpl

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	source         TemplateSource
	extension      string
	maxPasses      int
	debug          DebugFlag
	defaultRequest RequestInfo
	logger         *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		source:         nil,
		extension:      DefaultExtension,
		maxPasses:      DefaultMaxInclusionPasses,
		debug:          StaticDebug(false),
		defaultRequest: StaticRequest{},
		logger:         nil,
	}
}

// WithSource sets where template files are read from.
// Default: the local filesystem (OSSource)
func WithSource(source TemplateSource) Option {
	return func(c *engineConfig) {
		if source != nil {
			c.source = source
		}
	}
}

// WithExtension sets the template file extension, with or without the
// leading dot.
// Default: ".html"
func WithExtension(ext string) Option {
	return func(c *engineConfig) {
		if ext == "" {
			return
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		c.extension = ext
	}
}

// WithMaxInclusionPasses bounds how many inclusion passes run before a
// render fails with ErrInclusionLimit. Use 0 for no bound.
// Default: 64
func WithMaxInclusionPasses(passes int) Option {
	return func(c *engineConfig) {
		if passes >= 0 {
			c.maxPasses = passes
		}
	}
}

// WithDebugFlag sets the source of the {{ debug }} token.
// Default: always off
func WithDebugFlag(flag DebugFlag) Option {
	return func(c *engineConfig) {
		if flag != nil {
			c.debug = flag
		}
	}
}

// WithDefaultRequest sets the request info used when the context passed to
// Show carries none.
// Default: a non-ajax request with an empty URL
func WithDefaultRequest(info RequestInfo) Option {
	return func(c *engineConfig) {
		if info != nil {
			c.defaultRequest = info
		}
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
