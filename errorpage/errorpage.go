// Package errorpage renders runtime errors as an HTML page built from a
// template. The template is inline HTML or the path of a file and receives
// the error through three tags:
//
//	<h2>Error {{ error_code }} - {{ error_title }}</h2>
//	<div class="main">{{ error_message }}</div>
//
// Ajax requests only get the first <div> whose class contains "main", so
// the caller can inject it in the current page.
package errorpage

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/itsatony/go-cuserr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/itsatony/go-webtmpl/htmlutil"
)

// Defaults
const (
	DefaultMessageTag = "{{ error_message }}"
	DefaultCodeTag    = "{{ error_code }}"
	DefaultTitleTag   = "{{ error_title }}"
	DefaultStatus     = http.StatusBadRequest
	DefaultTitle      = "Bad Request"
	DefaultTimezone   = "Europe/Brussels"
	DefaultDateFormat = "02 Jan 2006 15:04:05"
	DefaultTemplate   = `<pre style="background-color:orange;padding:25px;">%s</pre>`
	MainClass         = "main"
)

// Severity names
const (
	SeverityError       = "Error"
	SeverityWarning     = "Warning"
	SeverityNotice      = "Notice"
	SeverityDeprecated  = "Deprecated"
	SeverityRecoverable = "Recoverable Error"
)

// Messages
const (
	ErrMsgTimezone = "unknown timezone"
	ErrMsgStatus   = "invalid http status"
	ErrCodeSetup   = "ERRORPAGE_SETUP"
	MetaKeyValue   = "value"
	LogMsgPanic    = "recovered from panic"
	LogMsgRender   = "error page rendered"
	LogFieldStatus = "status"
	LogFieldFile   = "file"
	LogFieldLine   = "line"
	LogFieldValue  = "panic"
	LogFieldAjax   = "ajax"
	LogFieldPath   = "path"
)

const (
	blockSeverityOpen = `<span style="color:red;font-weight:bold;">`
	blockSeverityEnd  = `:</span>&nbsp;`
	blockLineOpen     = `<span style="color:#3D9700;">Line `
	blockLineEnd      = `</span>`
	blockBreak        = `<br/>`
)

// Page renders error pages. A Page is immutable once built and safe for
// concurrent use.
type Page struct {
	template   string
	tagMessage string
	tagCode    string
	tagTitle   string
	status     int
	title      string
	timezone   string
	dateFormat string
	location   *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Page.
type Option func(*Page)

// WithTemplate sets the page template: inline HTML, or the path of a file
// read on every render.
func WithTemplate(template string) Option {
	return func(p *Page) {
		p.template = strings.TrimSpace(template)
	}
}

// WithTags changes the message, code and title tags. Blank values keep the
// default tag.
func WithTags(message, code, title string) Option {
	return func(p *Page) {
		if strings.TrimSpace(message) != "" {
			p.tagMessage = message
		}
		if strings.TrimSpace(code) != "" {
			p.tagCode = code
		}
		if strings.TrimSpace(title) != "" {
			p.tagTitle = title
		}
	}
}

// WithStatus sets the HTTP status and title sent by Render.
// Default: 400 "Bad Request"
func WithStatus(code int, title string) Option {
	return func(p *Page) {
		p.status = code
		p.title = title
	}
}

// WithTimezone sets the zone used for the date in the message.
// Default: "Europe/Brussels"
func WithTimezone(name string) Option {
	return func(p *Page) {
		if name != "" {
			p.timezone = name
		}
	}
}

// WithDateFormat sets the date layout, in time.Format notation.
func WithDateFormat(layout string) Option {
	return func(p *Page) {
		if layout != "" {
			p.dateFormat = layout
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Page) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger used by Recover.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Page.
func New(opts ...Option) (*Page, error) {
	p := &Page{
		tagMessage: DefaultMessageTag,
		tagCode:    DefaultCodeTag,
		tagTitle:   DefaultTitleTag,
		status:     DefaultStatus,
		title:      DefaultTitle,
		timezone:   DefaultTimezone,
		dateFormat: DefaultDateFormat,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.status < 100 || p.status > 599 {
		return nil, cuserr.NewValidationError(ErrCodeSetup, ErrMsgStatus).
			WithMetadata(MetaKeyValue, strconv.Itoa(p.status))
	}
	loc, err := time.LoadLocation(p.timezone)
	if err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeSetup, ErrMsgTimezone).
			WithMetadata(MetaKeyValue, p.timezone)
	}
	p.location = loc
	return p, nil
}

// Status returns the HTTP status code and title of the page.
func (p *Page) Status() (int, string) {
	return p.status, p.title
}

// Message builds the HTML block describing one error.
func (p *Page) Message(severity, message, file string, line int) string {
	var b strings.Builder
	b.WriteString(p.now().In(p.location).Format(p.dateFormat))
	b.WriteString(blockBreak)
	b.WriteString(blockSeverityOpen)
	b.WriteString(severity)
	b.WriteString(blockSeverityEnd)
	b.WriteString(message)
	b.WriteString(blockBreak)
	b.WriteString(blockLineOpen)
	b.WriteString(strconv.Itoa(line))
	b.WriteString(": ")
	b.WriteString(file)
	b.WriteString(blockLineEnd)
	b.WriteString(blockBreak)
	b.WriteString(blockBreak)
	return strings.TrimSpace(b.String())
}

// HTML builds the complete page for the error. The message block replaces
// the message tag, or is appended when the template has none. With ajax,
// only the first main div is returned when the page has one.
func (p *Page) HTML(ajax bool, severity, message, file string, line int) string {
	return p.build(ajax, p.status, p.title, p.Message(severity, message, file, line))
}

func (p *Page) build(ajax bool, code int, title, block string) string {
	page := p.loadTemplate()

	if strings.Contains(page, p.tagMessage) {
		page = strings.ReplaceAll(page, p.tagMessage, block)
	} else {
		page += block
	}
	page = strings.ReplaceAll(page, p.tagCode, strconv.Itoa(code))
	page = strings.ReplaceAll(page, p.tagTitle, title)

	if ajax {
		if main, ok := ExtractMain(page); ok {
			return main
		}
	}
	return page
}

func (p *Page) loadTemplate() string {
	if p.template == "" {
		return fmt.Sprintf(DefaultTemplate, p.tagMessage)
	}
	info, err := os.Stat(p.template)
	if err != nil || info.IsDir() {
		return p.template
	}
	content, err := os.ReadFile(p.template)
	if err != nil {
		return p.tagMessage
	}
	return string(content)
}

// Render writes the error page for r with the configured status.
func (p *Page) Render(w http.ResponseWriter, r *http.Request, severity, message, file string, line int) {
	ajax := htmlutil.IsAjaxRequest(r)
	body := p.build(ajax, p.status, p.title, p.Message(severity, message, file, line))
	p.write(w, p.status, body)
}

// ServeError answers a failed request with the error page, using status
// instead of the configured one. It fits webtmpl.WithErrorFunc.
func (p *Page) ServeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		message = html.EscapeString(err.Error())
	}
	path := ""
	if r != nil && r.URL != nil {
		path = r.URL.Path
	}
	ajax := htmlutil.IsAjaxRequest(r)

	p.logger.Debug(LogMsgRender,
		zap.Int(LogFieldStatus, status),
		zap.String(LogFieldPath, path),
		zap.Bool(LogFieldAjax, ajax),
	)
	body := p.build(ajax, status, http.StatusText(status), p.Message(SeverityError, message, path, 0))
	p.write(w, status, body)
}

func (p *Page) write(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ExtractMain returns the outer HTML of the first <div> whose class
// attribute contains "main".
func ExtractMain(page string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	node := findMain(doc)
	if node == nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", false
	}
	return buf.String(), true
}

func findMain(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Div {
		for _, attr := range n.Attr {
			if attr.Key == "class" && strings.Contains(attr.Val, MainClass) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findMain(c); found != nil {
			return found
		}
	}
	return nil
}
