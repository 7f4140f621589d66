package errorpage

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	runtimePrefix    = "runtime."
	internalRTPrefix = "internal/runtime/"
	runtimePanic     = "runtime.gopanic"
	maxFrames        = 32
)

// Recover wraps next so a panic while serving is logged and answered with
// the error page. http.ErrAbortHandler is passed through.
func (p *Page) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			file, line := panicLocation()
			message := fmt.Sprint(rec)
			p.logger.Error(LogMsgPanic,
				zap.String(LogFieldValue, message),
				zap.String(LogFieldFile, file),
				zap.Int(LogFieldLine, line),
				zap.String(LogFieldPath, r.URL.Path),
			)
			p.Render(w, r, SeverityError, html.EscapeString(message), file, line)
		}()
		next.ServeHTTP(w, r)
	})
}

// panicLocation returns the first frame outside the runtime below
// runtime.gopanic, which is where the panic was raised.
func panicLocation() (string, int) {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic && !isRuntime(frame.Function) {
			return frame.File, frame.Line
		}
		if frame.Function == runtimePanic {
			afterPanic = true
		}
		if !more {
			return "", 0
		}
	}
}

func isRuntime(function string) bool {
	return strings.HasPrefix(function, runtimePrefix) || strings.HasPrefix(function, internalRTPrefix)
}
