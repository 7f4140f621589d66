package applog

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsatony/go-webtmpl/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, debug bool) *App {
	t.Helper()
	app, err := New(debug, Config{
		Folder:   filepath.Join(t.TempDir(), "logs"),
		Prefix:   "TEST",
		Timezone: "UTC",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func readEntries(t *testing.T, app *App) []map[string]any {
	t.Helper()
	require.NoError(t, app.Sync())

	f, err := os.Open(filepath.Join(app.Folder(), AppLogFile))
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func messages(entries []map[string]any) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		msg, _ := e[LogKeyMessage].(string)
		out = append(out, msg)
	}
	return out
}

func TestNew_CreatesProtectedFolder(t *testing.T) {
	app := newTestApp(t, false)

	assert.True(t, fileutil.Exists(filepath.Join(app.Folder(), fileutil.DenyFileName)))
	assert.True(t, fileutil.Exists(filepath.Join(app.Folder(), AppLogFile)))
	assert.True(t, fileutil.Exists(filepath.Join(app.Folder(), ErrorLogFile)))
}

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New(false, Config{Folder: t.TempDir(), Timezone: "Nowhere/Void"})
	assert.Error(t, err)
}

func TestDebugMode(t *testing.T) {
	t.Run("on writes every level", func(t *testing.T) {
		app := newTestApp(t, true)
		assert.True(t, app.DebugMode())

		app.Debug("dbg")
		app.Notice("note")
		app.Critical("crit")

		entries := readEntries(t, app)
		assert.Equal(t, []string{LogMsgDebugOn, "dbg", "note", "crit"}, messages(entries))

		assert.Equal(t, "TEST", entries[1][LogKeyName])
		assert.Equal(t, "DEBUG", entries[1][LogKeyLevel])
		assert.Equal(t, string(LevelNotice), entries[2][LogFieldSeverity])
		assert.Equal(t, "ERROR", entries[3][LogKeyLevel])
		assert.Equal(t, string(LevelCritical), entries[3][LogFieldSeverity])
	})

	t.Run("off writes errors only", func(t *testing.T) {
		app := newTestApp(t, false)
		assert.False(t, app.DebugMode())

		app.Debug("dbg")
		app.Info("info")
		app.Warning("warn")
		app.Error("err")
		app.Emergency("emerg")

		assert.Equal(t, []string{"err", "emerg"}, messages(readEntries(t, app)))
	})

	t.Run("switching is logged", func(t *testing.T) {
		app := newTestApp(t, true)
		app.SetDebugMode(false)
		app.Info("hidden")
		app.SetDebugMode(true)
		app.Info("shown")

		assert.Equal(t,
			[]string{LogMsgDebugOn, LogMsgDebugOff, LogMsgDebugOn, "shown"},
			messages(readEntries(t, app)))
	})
}

func TestLog_Fields(t *testing.T) {
	app := newTestApp(t, true)
	app.Log(LevelAlert, "disk", zap.Int("free", 0))

	entries := readEntries(t, app)
	require.Len(t, entries, 2)
	assert.Equal(t, float64(0), entries[1]["free"])
	assert.Equal(t, string(LevelAlert), entries[1][LogFieldSeverity])
	assert.NotEmpty(t, entries[1][LogKeyTime])
}

func TestLogRequest(t *testing.T) {
	app := newTestApp(t, true)

	app.LogRequest(httptest.NewRequest(http.MethodGet, "/page?id=3", nil))
	app.LogRequest(httptest.NewRequest(http.MethodPost, "/page", nil))
	app.LogRequest(nil)

	entries := readEntries(t, app)
	assert.Equal(t, []string{LogMsgDebugOn, "id=3", LogMsgQueryEmpty}, messages(entries))
	assert.Equal(t, http.MethodPost, entries[2][LogFieldMethod])
	assert.Equal(t, "/page", entries[2][LogFieldPath])
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" notice ")
	require.NoError(t, err)
	assert.Equal(t, LevelNotice, l)

	l, err = ParseLevel("EMERGENCY")
	require.NoError(t, err)
	assert.Equal(t, LevelEmergency, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	app, err := New(false, Config{Folder: t.TempDir(), Timezone: "UTC"})
	require.NoError(t, err)
	assert.NoError(t, app.Close())
	assert.Error(t, app.Close())
}
