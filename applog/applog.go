// Package applog provides the application logger: a zap logger writing to
// <folder>/application.log with a debug switch that decides how much is
// written. Outside debug mode only errors and above reach the file.
//
//	app, err := applog.New(true, applog.Config{Folder: "logs"})
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//	app.Info("started")
package applog

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-webtmpl/fileutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// File and default constants
const (
	AppLogFile        = "application.log"
	ErrorLogFile      = "error.log"
	DefaultFolder     = "logs"
	DefaultPrefix     = "APP"
	DefaultTimezone   = "Europe/Brussels"
	DefaultDateFormat = "02 Jan 2006 15:04:05"
	logFilePerms      = 0o644
)

// Log messages
const (
	LogMsgDebugOn      = "Debug mode is ON, output all levels"
	LogMsgDebugOff     = "Debug mode is OFF, output only Error, Critical, Alert and Emergency"
	LogMsgQueryEmpty   = "Query string empty"
	LogFieldSeverity   = "severity"
	LogFieldMethod     = "method"
	LogFieldPath       = "path"
	LogKeyTime         = "time"
	LogKeyLevel        = "level"
	LogKeyName         = "channel"
	LogKeyMessage      = "message"
	ErrMsgInvalidLevel = "unknown log level"
	ErrMsgOpenLog      = "failed to open log file"
	ErrMsgLogFolder    = "failed to create log folder"
	ErrMsgTimezone     = "unknown timezone"
	ErrCodeAppLog      = "APPLOG_SETUP"
	ErrCodeLevel       = "APPLOG_LEVEL"
	MetaKeyLevel       = "level"
	MetaKeyPath        = "path"
)

// Level is a PSR-3 log level.
type Level string

// PSR-3 levels, lowest first.
const (
	LevelDebug     Level = "DEBUG"
	LevelInfo      Level = "INFO"
	LevelNotice    Level = "NOTICE"
	LevelWarning   Level = "WARNING"
	LevelError     Level = "ERROR"
	LevelCritical  Level = "CRITICAL"
	LevelAlert     Level = "ALERT"
	LevelEmergency Level = "EMERGENCY"
)

// zap has no notice, critical, alert or emergency; those are written at the
// nearest zap level with the PSR-3 name in the severity field.
var zapLevels = map[Level]zapcore.Level{
	LevelDebug:     zapcore.DebugLevel,
	LevelInfo:      zapcore.InfoLevel,
	LevelNotice:    zapcore.InfoLevel,
	LevelWarning:   zapcore.WarnLevel,
	LevelError:     zapcore.ErrorLevel,
	LevelCritical:  zapcore.ErrorLevel,
	LevelAlert:     zapcore.ErrorLevel,
	LevelEmergency: zapcore.ErrorLevel,
}

// ParseLevel returns the Level named s, case-insensitive.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := zapLevels[l]; !ok {
		return "", cuserr.NewValidationError(ErrCodeLevel, ErrMsgInvalidLevel).
			WithMetadata(MetaKeyLevel, s)
	}
	return l, nil
}

// Config holds the App settings. Zero values use the defaults.
type Config struct {
	Folder     string
	Prefix     string
	Timezone   string
	DateFormat string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Folder) == "" {
		c.Folder = DefaultFolder
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.DateFormat == "" {
		c.DateFormat = DefaultDateFormat
	}
	return c
}

// App is the application logger.
type App struct {
	logger *zap.Logger
	level  zap.AtomicLevel
	folder string
	files  []*os.File

	mu    sync.RWMutex
	debug bool
}

// New creates the log folder (protected by a deny file) when missing and
// opens the log files in it.
func New(debug bool, cfg Config) (*App, error) {
	cfg = cfg.withDefaults()
	folder := strings.TrimRight(cfg.Folder, `/\`)
	if folder == "" {
		folder = string(os.PathSeparator)
	}

	if !fileutil.IsDir(folder) {
		if err := fileutil.MakeFolder(folder, true); err != nil {
			return nil, cuserr.WrapStdError(err, ErrCodeAppLog, ErrMsgLogFolder).
				WithMetadata(MetaKeyPath, folder)
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeAppLog, ErrMsgTimezone).
			WithMetadata(MetaKeyPath, cfg.Timezone)
	}

	appFile, err := openLog(filepath.Join(folder, AppLogFile))
	if err != nil {
		return nil, err
	}
	errFile, err := openLog(filepath.Join(folder, ErrorLogFile))
	if err != nil {
		appFile.Close()
		return nil, err
	}

	level := zap.NewAtomicLevelAt(levelFor(debug))
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig(loc, cfg.DateFormat)),
		zapcore.AddSync(appFile),
		level,
	)
	logger := zap.New(core, zap.ErrorOutput(zapcore.AddSync(errFile))).Named(cfg.Prefix)

	app := &App{
		logger: logger,
		level:  level,
		folder: folder,
		files:  []*os.File{appFile, errFile},
	}
	app.SetDebugMode(debug)
	return app, nil
}

func openLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePerms)
	if err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeAppLog, ErrMsgOpenLog).
			WithMetadata(MetaKeyPath, path)
	}
	return f, nil
}

func encoderConfig(loc *time.Location, layout string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       LogKeyTime,
		LevelKey:      LogKeyLevel,
		NameKey:       LogKeyName,
		MessageKey:    LogKeyMessage,
		StacktraceKey: "",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(loc).Format(layout))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.ErrorLevel
}

// Logger returns the underlying zap logger, for libraries taking one.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Folder returns the folder holding the log files.
func (a *App) Folder() string {
	return a.folder
}

// SetDebugMode switches between writing every level (on) and only errors
// and above (off). The change itself is logged at info level.
func (a *App) SetDebugMode(on bool) {
	a.mu.Lock()
	a.debug = on
	a.mu.Unlock()

	if on {
		a.level.SetLevel(zapcore.DebugLevel)
		a.logger.Info(LogMsgDebugOn)
		return
	}
	a.logger.Info(LogMsgDebugOff)
	a.level.SetLevel(zapcore.ErrorLevel)
}

// DebugMode reports whether debug mode is on.
func (a *App) DebugMode() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.debug
}

// Log writes msg at the PSR-3 level.
func (a *App) Log(level Level, msg string, fields ...zap.Field) {
	zl, ok := zapLevels[level]
	if !ok {
		zl = zapcore.ErrorLevel
	}
	if ce := a.logger.Check(zl, msg); ce != nil {
		ce.Write(append(fields, zap.String(LogFieldSeverity, string(level)))...)
	}
}

// Debug, Info, Notice, Warning, Error, Critical, Alert and Emergency log msg
// at the matching Level.
func (a *App) Debug(msg string, fields ...zap.Field)     { a.Log(LevelDebug, msg, fields...) }
func (a *App) Info(msg string, fields ...zap.Field)      { a.Log(LevelInfo, msg, fields...) }
func (a *App) Notice(msg string, fields ...zap.Field)    { a.Log(LevelNotice, msg, fields...) }
func (a *App) Warning(msg string, fields ...zap.Field)   { a.Log(LevelWarning, msg, fields...) }
func (a *App) Error(msg string, fields ...zap.Field)     { a.Log(LevelError, msg, fields...) }
func (a *App) Critical(msg string, fields ...zap.Field)  { a.Log(LevelCritical, msg, fields...) }
func (a *App) Alert(msg string, fields ...zap.Field)     { a.Log(LevelAlert, msg, fields...) }
func (a *App) Emergency(msg string, fields ...zap.Field) { a.Log(LevelEmergency, msg, fields...) }

// LogRequest writes the query string of r at info level.
func (a *App) LogRequest(r *http.Request) {
	if r == nil || r.URL == nil {
		return
	}
	msg := r.URL.RawQuery
	if msg == "" {
		msg = LogMsgQueryEmpty
	}
	a.Info(msg,
		zap.String(LogFieldMethod, r.Method),
		zap.String(LogFieldPath, r.URL.Path),
	)
}

// Sync flushes buffered entries.
func (a *App) Sync() error {
	return a.logger.Sync()
}

// Close flushes and closes the log files.
func (a *App) Close() error {
	_ = a.logger.Sync()
	var errs []error
	for _, f := range a.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}
