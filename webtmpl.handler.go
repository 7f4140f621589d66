package webtmpl

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// VarsFunc returns the placeholder values for a request.
type VarsFunc func(r *http.Request) map[string]any

// ErrorFunc writes the response for a failed render.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

// Handler serves templates over HTTP: GET /login renders template "login",
// GET / renders the index template.
type Handler struct {
	engine     *Engine
	index      string
	scriptName string
	vars       VarsFunc
	onError    ErrorFunc
	logger     *zap.Logger

	renders  *prometheus.CounterVec
	duration prometheus.Histogram
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithIndex sets the template rendered for "/".
// Default: "index"
func WithIndex(name string) HandlerOption {
	return func(h *Handler) {
		if name != "" {
			h.index = name
		}
	}
}

// WithVars sets the function providing placeholder values per request.
func WithVars(fn VarsFunc) HandlerOption {
	return func(h *Handler) {
		h.vars = fn
	}
}

// WithScriptName sets the script name stripped from {{ url }}.
func WithScriptName(name string) HandlerOption {
	return func(h *Handler) {
		h.scriptName = name
	}
}

// WithErrorFunc sets how failed renders are answered.
// Default: plain http.Error with the status text
func WithErrorFunc(fn ErrorFunc) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.onError = fn
		}
	}
}

// WithHandlerLogger sets the handler logger.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics registers render metrics on registry. Pass a dedicated
// prometheus.NewRegistry(), never the global default registerer.
func WithMetrics(registry prometheus.Registerer) HandlerOption {
	return func(h *Handler) {
		if registry == nil {
			return
		}
		h.renders = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: MetricRendersTotal,
			Help: MetricRendersHelp,
		}, []string{MetricLabelOutcome})
		h.duration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRenderDuration,
			Help:    MetricRenderDurationHelp,
			Buckets: prometheus.DefBuckets,
		})
	}
}

// NewHandler creates a Handler for engine.
func NewHandler(engine *Engine, opts ...HandlerOption) (*Handler, error) {
	if engine == nil {
		return nil, errors.New(ErrMsgNilEngine)
	}
	h := &Handler{
		engine:  engine,
		index:   DefaultIndexName,
		onError: defaultErrorFunc,
		logger:  engine.logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func defaultErrorFunc(w http.ResponseWriter, _ *http.Request, status int, _ error) {
	http.Error(w, http.StatusText(status), status)
}

// TemplateName maps a request path to a template name.
func (h *Handler) TemplateName(urlPath string) string {
	name := strings.Trim(urlPath, "/")
	name = strings.TrimSuffix(name, h.engine.config.extension)
	if name == "" {
		return h.index
	}
	return name
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		h.onError(w, r, http.StatusMethodNotAllowed, nil)
		return
	}

	start := time.Now()
	name := h.TemplateName(r.URL.Path)
	info := NewHTTPRequest(r, h.scriptName)
	ctx := WithRequest(r.Context(), info)

	var vars map[string]any
	if h.vars != nil {
		vars = h.vars(r)
	}

	h.logger.Debug(LogMsgHandlerRender,
		zap.String(LogFieldTemplate, name),
		zap.Bool(LogFieldAjax, info.IsAjaxRequest()),
	)

	out, err := h.engine.Show(ctx, name, vars)
	h.observe(start, err)
	if err != nil {
		status := http.StatusInternalServerError
		if IsNotFound(err) {
			status = http.StatusNotFound
		}
		h.logger.Warn(LogMsgHandlerFailed,
			zap.String(LogFieldTemplate, name),
			zap.Int(LogFieldStatus, status),
			zap.Error(err),
		)
		h.onError(w, r, status, err)
		return
	}

	contentType := ContentTypeHTML
	if h.engine.Mode() == ModeRaw {
		contentType = ContentTypeText
	}
	w.Header().Set(HeaderContentType, contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(out))
}

func (h *Handler) observe(start time.Time, err error) {
	if h.renders == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case IsNotFound(err):
		outcome = OutcomeNotFound
	default:
		outcome = OutcomeError
	}
	h.renders.WithLabelValues(outcome).Inc()
	h.duration.Observe(time.Since(start).Seconds())
}
