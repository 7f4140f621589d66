package webtmpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testDebounce = 20 * time.Millisecond

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"page": "v1"})
	cache := NewCachedSource(NewOSSource(), DefaultCacheConfig())
	engine := MustNew(ModeHTML, dir, WithSource(cache))

	out, err := engine.Show(context.Background(), "page", nil)
	require.NoError(t, err)
	require.Equal(t, "v1", out)

	w, err := NewWatcher(dir, cache, testDebounce, nil)
	require.NoError(t, err)

	changed := make(chan []string, 4)
	w.OnChange(func(paths []string) { changed <- paths })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("v2"), 0o644))

	select {
	case paths := <-changed:
		assert.Contains(t, paths, filepath.Join(dir, "page.html"))
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	out, err = engine.Show(context.Background(), "page", nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_NewSubFolder(t *testing.T) {
	dir := writeTemplates(t, nil)
	cache := NewCachedSource(NewOSSource(), DefaultCacheConfig())
	core, logs := observer.New(zap.DebugLevel)

	w, err := NewWatcher(dir, cache, testDebounce, zap.New(core))
	require.NoError(t, err)

	changed := make(chan []string, 8)
	w.OnChange(func(paths []string) { changed <- paths })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	sub := filepath.Join(dir, "Partials")
	require.NoError(t, os.Mkdir(sub, 0o755))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification for folder")
	}
	assert.NotZero(t, logs.FilterMessage(LogMsgCacheInvalidated).Len())
}

func TestNewWatcher_MissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), nil, 0, nil)
	assert.Error(t, err)
}
