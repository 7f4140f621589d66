package webtmpl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/itsatony/go-webtmpl/htmlutil"
	"github.com/itsatony/go-webtmpl/internal"
	"go.uber.org/zap"
)

// Engine renders HTML templates from a root folder.
// The output mode is the only state kept between renders; it is safe to
// share one Engine between goroutines.
type Engine struct {
	folder string
	config *engineConfig
	source TemplateSource
	logger *zap.Logger

	modeMu sync.RWMutex
	mode   Mode
}

// New creates an Engine rendering in mode from templates under folder.
// An empty mode means DefaultMode and an empty folder the current directory. It returns an
// ErrInvalidMode error for an unsupported mode and an ErrInvalidFolder
// error when folder does not exist.
func New(mode Mode, folder string, opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	source := config.source
	if source == nil {
		source = NewOSSource()
	}

	if strings.TrimSpace(string(mode)) == "" {
		mode = DefaultMode
	}
	parsed, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	folder = normalizeFolder(folder)
	if !source.Exists(folder) {
		return nil, NewInvalidFolderError(folder)
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldFolder, folder),
		zap.String(LogFieldMode, parsed.String()),
	)

	return &Engine{
		folder: folder,
		config: config,
		source: source,
		logger: logger,
		mode:   parsed,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(mode Mode, folder string, opts ...Option) *Engine {
	engine, err := New(mode, folder, opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// ParseMode trims s and returns the matching Mode. A blank string is not
// a mode.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	m := Mode(s)
	if !m.Valid() {
		return "", NewInvalidModeError(s)
	}
	return m, nil
}

func normalizeFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return DefaultFolder
	}
	folder = strings.TrimRight(htmlutil.SanitizePath(folder), `/\`)
	if folder == "" {
		return string(os.PathSeparator)
	}
	return folder
}

// Folder returns the template root folder.
func (e *Engine) Folder() string {
	return e.folder
}

// Mode returns the current output mode.
func (e *Engine) Mode() Mode {
	e.modeMu.RLock()
	defer e.modeMu.RUnlock()
	return e.mode
}

// SetMode changes the output mode for subsequent renders. An unsupported
// mode returns an ErrInvalidMode error and leaves the current mode as is.
func (e *Engine) SetMode(mode Mode) error {
	parsed, err := ParseMode(string(mode))
	if err != nil {
		return err
	}

	e.modeMu.Lock()
	e.mode = parsed
	e.modeMu.Unlock()

	e.logger.Debug(LogMsgModeChanged, zap.String(LogFieldMode, parsed.String()))
	return nil
}

// Resolve returns the file path of the named template. The name is trimmed
// and sanitized, the extension appended and the result joined with the
// root folder. A missing file returns an ErrTemplateNotFound error.
func (e *Engine) Resolve(name string) (string, error) {
	clean := htmlutil.SanitizePath(strings.TrimSpace(name))
	path := filepath.Join(e.folder, clean+e.config.extension)

	if !e.source.Exists(path) {
		e.logger.Debug(LogMsgTemplateMissing,
			zap.String(LogFieldTemplate, name),
			zap.String(LogFieldPath, path),
		)
		return "", NewTemplateNotFoundError(name, path)
	}

	e.logger.Debug(LogMsgTemplateResolved,
		zap.String(LogFieldTemplate, name),
		zap.String(LogFieldPath, path),
	)
	return path, nil
}

// load resolves and reads the named template without processing it.
func (e *Engine) load(name string) (string, error) {
	path, err := e.Resolve(name)
	if err != nil {
		return "", err
	}
	content, err := e.source.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", NewTemplateNotFoundError(name, path)
		}
		return "", NewTemplateReadError(path, err)
	}
	return content, nil
}

// Show renders the named template with vars.
//
// Processing runs in a fixed order: inclusions are expanded until none
// remain, blocks of other output modes are removed, then the blocks that
// do not match the request type (full or ajax), then HTML comments, and
// finally {{ url }}, {{ debug }} and the keys of vars are substituted.
//
// The request is taken from ctx (see WithRequest), or the engine default.
// A missing root or included template returns an ErrTemplateNotFound error.
func (e *Engine) Show(ctx context.Context, name string, vars map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.logger.Debug(LogMsgShowStart, zap.String(LogFieldTemplate, name))

	source, err := e.load(name)
	if err != nil {
		return "", err
	}

	out, err := e.process(ctx, name, source, vars)
	if err != nil {
		return "", err
	}

	e.logger.Debug(LogMsgShowEnd,
		zap.String(LogFieldTemplate, name),
		zap.Int(LogFieldLength, len(out)),
	)
	return out, nil
}

// MustShow is like Show but panics on error.
func (e *Engine) MustShow(ctx context.Context, name string, vars map[string]any) string {
	out, err := e.Show(ctx, name, vars)
	if err != nil {
		panic(err)
	}
	return out
}

// ShowString renders text as if it were the content of a template file.
// Inclusions inside text are resolved from the root folder.
func (e *Engine) ShowString(ctx context.Context, text string, vars map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.process(ctx, "", text, vars)
}

func (e *Engine) process(ctx context.Context, name, text string, vars map[string]any) (string, error) {
	mode := e.Mode()
	req := e.requestFor(ctx)

	inclusions := internal.NewInclusionProcessor(e.load, e.config.maxPasses, e.logger)
	text, err := inclusions.Process(text)
	if err != nil {
		if errors.Is(err, internal.ErrInclusionPasses) {
			return "", NewInclusionLimitError(name, e.config.maxPasses)
		}
		return "", err
	}

	if ce := e.logger.Check(zap.DebugLevel, internal.LogMsgModeBlocks); ce != nil {
		ce.Write(
			zap.String(internal.LogFieldMode, mode.String()),
			zap.Strings(internal.LogFieldTags, internal.BlockTags(text)),
		)
	}
	text = internal.RemoveConditionalModeBlocks(text, mode.String(), supportedModeNames())

	ajax := req.IsAjaxRequest()
	text = internal.RemoveConditionalRequestBlocks(text, ajax)
	e.logger.Debug(internal.LogMsgRequestBlocks,
		zap.Bool(internal.LogFieldAjax, ajax),
		zap.String(internal.LogFieldRemoved, internal.RequestTagToRemove(ajax)),
	)

	text = htmlutil.RemoveHTMLComments(text)

	ce := e.logger.Check(zap.DebugLevel, internal.LogMsgTokensReplaced)
	before := 0
	if ce != nil {
		before = internal.CountMarkers(text)
	}
	text = internal.Substitute(text, e.builtins(req), vars)
	if ce != nil {
		ce.Write(zap.Int(internal.LogFieldReplaced, before-internal.CountMarkers(text)))
	}
	return text, nil
}

func (e *Engine) requestFor(ctx context.Context) RequestInfo {
	if info, ok := RequestFromContext(ctx); ok {
		return info
	}
	return e.config.defaultRequest
}

func (e *Engine) builtins(req RequestInfo) []internal.Token {
	debug := DebugValueOff
	if e.config.debug.DebugMode() {
		debug = DebugValueOn
	}
	return []internal.Token{
		{Name: TokenURL, Value: req.CurrentURL(true)},
		{Name: TokenDebug, Value: debug},
	}
}

func supportedModeNames() []string {
	names := make([]string, len(SupportedModes))
	for i, m := range SupportedModes {
		names[i] = m.String()
	}
	return names
}
