package webtmpl

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-webtmpl/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Test fixture constants
const (
	testLogin = "<!DOCTYPE html>\n<html>\n{{ include('Partials/head') }}\n" +
		"<body class=\"hold-transition login-page\">\n\t{{ content }}\n</body>\n" +
		"<!-- end of page -->\n</html>\n"
	testHead = "<!-- @if_html_start-->\n<head>\n\t<title>{{ title }}</title>\n" +
		"\t<link rel=\"stylesheet\" href=\"{{ url }}assets/css/interface.css\">\n" +
		"</head>\n<!-- @if_html_end-->"
	testURL = "http://example.com/"
)

// writeTemplates creates a template folder holding files (name without
// extension => content) and returns its path.
func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name)+DefaultExtension)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loginFixture(t *testing.T) string {
	return writeTemplates(t, map[string]string{
		"login":         testLogin,
		"Partials/head": testHead,
	})
}

var loginVars = map[string]any{
	"title":   "Test Template",
	"content": "Hello, this is my nice content",
}

func TestEngine_ShowLoginHTMLAndRaw(t *testing.T) {
	engine, err := New(ModeHTML, loginFixture(t),
		WithDefaultRequest(StaticRequest{URL: testURL}))
	require.NoError(t, err)

	out, err := engine.Show(context.Background(), "login", loginVars)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html>\n<html>\n<head>\n\t<title>Test Template</title>\n"+
		"\t<link rel=\"stylesheet\" href=\"http://example.com/assets/css/interface.css\">\n"+
		"</head>\n<body class=\"hold-transition login-page\">\n"+
		"\tHello, this is my nice content\n</body>\n</html>", out)

	require.NoError(t, engine.SetMode(ModeRaw))
	out, err = engine.Show(context.Background(), "login", loginVars)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html>\n<html>\n\n<body class=\"hold-transition login-page\">\n"+
		"\tHello, this is my nice content\n</body>\n</html>", out)
}

func TestEngine_ShowSimpleSubstitution(t *testing.T) {
	engine := MustNew(ModeHTML, writeTemplates(t, map[string]string{"hello": "Hello {{ name }}!"}))

	out, err := engine.Show(context.Background(), "hello", map[string]any{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out)
}

func TestEngine_ShowModeScenario(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page": "<!-- @if_html_start-->H<!-- @if_html_end--><!-- @if_raw_start-->R<!-- @if_raw_end-->",
	})

	tests := []struct {
		mode Mode
		want string
	}{
		{ModeHTML, "H"},
		{ModeRaw, "R"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			engine := MustNew(tt.mode, dir)
			out, err := engine.Show(context.Background(), "page", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEngine_ShowRequestBlocks(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page": "<!-- @if_full_start--><nav>menu</nav><!-- @if_full_end-->" +
			"<!-- @if_ajax_start--><p>partial</p><!-- @if_ajax_end--><main>x</main>",
	})
	engine := MustNew(ModeHTML, dir)

	out, err := engine.Show(context.Background(), "page", nil)
	require.NoError(t, err)
	assert.Equal(t, "<nav>menu</nav><main>x</main>", out)

	ctx := WithRequest(context.Background(), StaticRequest{Ajax: true})
	out, err = engine.Show(ctx, "page", nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>partial</p><main>x</main>", out)
}

func TestEngine_ShowCommentsRemoved(t *testing.T) {
	engine := MustNew(ModeHTML, writeTemplates(t, map[string]string{"c": "<!-- c -->AB<!-- d -->"}))
	out, err := engine.Show(context.Background(), "c", nil)
	require.NoError(t, err)
	assert.Equal(t, "AB", out)
}

func TestEngine_ShowBuiltins(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"b": "{{ url }}|{{ debug }}"})

	engine := MustNew(ModeHTML, dir, WithDefaultRequest(StaticRequest{URL: testURL}))
	out, err := engine.Show(context.Background(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, testURL+"|"+DebugValueOff, out)

	engine = MustNew(ModeHTML, dir, WithDebugFlag(StaticDebug(true)))
	out, err = engine.Show(context.Background(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, "|"+DebugValueOn, out)
}

func TestEngine_ShowUserVarsDoNotOverrideBuiltins(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"b": "{{ url }}"})
	engine := MustNew(ModeHTML, dir, WithDefaultRequest(StaticRequest{URL: testURL}))

	out, err := engine.Show(context.Background(), "b", map[string]any{"url": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, testURL, out)
}

func TestEngine_ShowMissingTemplate(t *testing.T) {
	engine := MustNew(ModeHTML, writeTemplates(t, map[string]string{
		"broken": "x {{ include('nope') }}",
	}))

	t.Run("root", func(t *testing.T) {
		out, err := engine.Show(context.Background(), "missing-template", nil)
		require.Error(t, err)
		assert.Empty(t, out)
		assert.True(t, IsNotFound(err))

		var custom *cuserr.CustomError
		require.ErrorAs(t, err, &custom)
		name, ok := custom.GetMetadata(MetaKeyTemplateName)
		assert.True(t, ok)
		assert.Equal(t, "missing-template", name)
	})

	t.Run("included", func(t *testing.T) {
		_, err := engine.Show(context.Background(), "broken", nil)
		assert.True(t, IsNotFound(err))
	})
}

func TestEngine_ShowInclusionCycle(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dir := writeTemplates(t, map[string]string{
		"a": "{{ include('b') }}",
		"b": "{{ include('a') }}",
	})
	engine := MustNew(ModeHTML, dir, WithMaxInclusionPasses(8), WithLogger(zap.New(core)))

	_, err := engine.Show(context.Background(), "a", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInclusionLimit)
	assert.NotZero(t, logs.Len())
}

func TestEngine_ShowNameNormalization(t *testing.T) {
	engine := MustNew(ModeHTML, writeTemplates(t, map[string]string{"Partials/box": "box"}))

	for _, name := range []string{"Partials/box", "  Partials/box  ", "Partials/b*o?x"} {
		t.Run(name, func(t *testing.T) {
			out, err := engine.Show(context.Background(), name, nil)
			require.NoError(t, err)
			assert.Equal(t, "box", out)
		})
	}
}

func TestEngine_ShowCancelledContext(t *testing.T) {
	engine := MustNew(ModeHTML, writeTemplates(t, map[string]string{"a": "a"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Show(ctx, "a", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ShowString(t *testing.T) {
	engine := MustNew(ModeRaw, writeTemplates(t, map[string]string{"p": "[{{ x }}]"}))

	out, err := engine.ShowString(context.Background(),
		"<!-- @if_html_start-->no<!-- @if_html_end-->{{ include('p') }}", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "[1]", out)
}

func TestEngine_MustShowPanicsOnMissing(t *testing.T) {
	engine := MustNew(ModeHTML, writeTemplates(t, nil))
	assert.Panics(t, func() {
		engine.MustShow(context.Background(), "nope", nil)
	})
}

func TestNew_Validation(t *testing.T) {
	dir := writeTemplates(t, nil)

	t.Run("invalid mode", func(t *testing.T) {
		_, err := New("pdf", dir)
		require.Error(t, err)
		assert.True(t, IsInvalidMode(err))
	})

	t.Run("empty mode is default", func(t *testing.T) {
		engine, err := New("", dir)
		require.NoError(t, err)
		assert.Equal(t, DefaultMode, engine.Mode())
	})

	t.Run("missing folder", func(t *testing.T) {
		_, err := New(ModeHTML, filepath.Join(dir, "nope"))
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("trailing separator trimmed", func(t *testing.T) {
		engine, err := New(ModeHTML, dir+string(os.PathSeparator))
		require.NoError(t, err)
		assert.Equal(t, dir, engine.Folder())
	})

	t.Run("empty folder is current directory", func(t *testing.T) {
		engine, err := New(ModeHTML, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultFolder, engine.Folder())
	})

	t.Run("must new panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNew("pdf", dir) })
	})
}

func TestEngine_SetModeInvalidKeepsMode(t *testing.T) {
	engine := MustNew(ModeRaw, writeTemplates(t, nil))

	for _, mode := range []Mode{"xml", "", "  "} {
		err := engine.SetMode(mode)
		require.Error(t, err, "mode %q", mode)
		assert.True(t, IsInvalidMode(err))
		assert.Equal(t, ModeRaw, engine.Mode())
	}

	require.NoError(t, engine.SetMode(" html "))
	assert.Equal(t, ModeHTML, engine.Mode())
}

func TestEngine_Resolve(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"index": "i"})
	engine := MustNew(ModeHTML, dir)

	path, err := engine.Resolve("index")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.html"), path)

	_, err = engine.Resolve("other")
	assert.True(t, IsNotFound(err))
}

func TestEngine_WithExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mail.tpl"), []byte("mail"), 0o644))

	engine := MustNew(ModeHTML, dir, WithExtension("tpl"))
	out, err := engine.Show(context.Background(), "mail", nil)
	require.NoError(t, err)
	assert.Equal(t, "mail", out)
}

func TestEngine_FSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"tpl/page.html":      {Data: []byte("{{ include('parts/hdr') }} body")},
		"tpl/parts/hdr.html": {Data: []byte("hdr")},
	}
	engine, err := New(ModeHTML, "tpl", WithSource(NewFSSource(fsys)))
	require.NoError(t, err)

	out, err := engine.Show(context.Background(), "page", nil)
	require.NoError(t, err)
	assert.Equal(t, "hdr body", out)
}

func TestEngine_ConcurrentShow(t *testing.T) {
	engine := MustNew(ModeHTML, loginFixture(t))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				_ = engine.SetMode(ModeRaw)
			}
			_, err := engine.Show(context.Background(), "login", loginVars)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestEngine_DebugLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := MustNew(ModeHTML, loginFixture(t), WithLogger(zap.New(core)))

	_, err := engine.Show(context.Background(), "login", loginVars)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage(LogMsgShowStart).Len())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgShowEnd).Len())
	assert.Equal(t, 2, logs.FilterMessage(LogMsgTemplateResolved).Len())

	modeLogs := logs.FilterMessage(internal.LogMsgModeBlocks).All()
	require.Len(t, modeLogs, 1)
	assert.Equal(t, ModeHTML.String(), modeLogs[0].ContextMap()[internal.LogFieldMode])

	requestLogs := logs.FilterMessage(internal.LogMsgRequestBlocks).All()
	require.Len(t, requestLogs, 1)
	assert.Equal(t, internal.RequestTagAjax, requestLogs[0].ContextMap()[internal.LogFieldRemoved])

	tokenLogs := logs.FilterMessage(internal.LogMsgTokensReplaced).All()
	require.Len(t, tokenLogs, 1)
	assert.Equal(t, int64(3), tokenLogs[0].ContextMap()[internal.LogFieldReplaced])
}
