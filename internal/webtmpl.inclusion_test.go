package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mapLoader serves templates from a map and counts loads per name.
type mapLoader struct {
	templates map[string]string
	calls     map[string]int
}

func newMapLoader(templates map[string]string) *mapLoader {
	return &mapLoader{templates: templates, calls: make(map[string]int)}
}

var errMissing = errors.New("missing template")

func (m *mapLoader) load(name string) (string, error) {
	m.calls[name]++
	content, ok := m.templates[name]
	if !ok {
		return "", errMissing
	}
	return content, nil
}

func TestInclusionProcessor_NoMarkers(t *testing.T) {
	loader := newMapLoader(nil)
	p := NewInclusionProcessor(loader.load, 0, nil)

	out, err := p.Process("<h1>{{ title }}</h1>")
	require.NoError(t, err)
	assert.Equal(t, "<h1>{{ title }}</h1>", out)
	assert.Empty(t, loader.calls)
}

func TestInclusionProcessor_Nested(t *testing.T) {
	loader := newMapLoader(map[string]string{
		"a": "A[{{ include('b') }}]",
		"b": "B[{{ include('c') }}]",
		"c": "C",
	})
	p := NewInclusionProcessor(loader.load, 0, nil)

	out, err := p.Process("root {{ include('a') }} end")
	require.NoError(t, err)
	assert.Equal(t, "root A[B[C]] end", out)
	assert.False(t, HasInclusions(out))
}

func TestInclusionProcessor_DuplicateMarkerLoadedOncePerPass(t *testing.T) {
	loader := newMapLoader(map[string]string{"sep": "<hr>"})
	p := NewInclusionProcessor(loader.load, 0, nil)

	out, err := p.Process("{{ include('sep') }}x{{ include('sep') }}")
	require.NoError(t, err)
	assert.Equal(t, "<hr>x<hr>", out)
	assert.Equal(t, 1, loader.calls["sep"])
}

func TestInclusionProcessor_MissingTemplate(t *testing.T) {
	loader := newMapLoader(map[string]string{"a": "{{ include('nope') }}"})
	p := NewInclusionProcessor(loader.load, 0, nil)

	_, err := p.Process("{{ include('a') }}")
	assert.ErrorIs(t, err, errMissing)
}

func TestInclusionProcessor_NilLoader(t *testing.T) {
	p := NewInclusionProcessor(nil, 0, nil)
	_, err := p.Process("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNilLoader)
}

func TestInclusionProcessor_CycleHitsLimit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	loader := newMapLoader(map[string]string{
		"a": "{{ include('b') }}",
		"b": "{{ include('a') }}",
	})
	p := NewInclusionProcessor(loader.load, 5, zap.New(core))

	_, err := p.Process("{{ include('a') }}")
	assert.ErrorIs(t, err, ErrInclusionPasses)

	entries := logs.FilterMessage(LogMsgInclusionLimit).All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].ContextMap()[LogFieldPass])
}

func TestInclusionProcessor_ExactlyAtLimitSucceeds(t *testing.T) {
	loader := newMapLoader(map[string]string{
		"a": "{{ include('b') }}",
		"b": "done",
	})
	p := NewInclusionProcessor(loader.load, 2, nil)

	out, err := p.Process("{{ include('a') }}")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestInclusionProcessor_MarkerSyntaxIsStrict(t *testing.T) {
	loader := newMapLoader(map[string]string{"a": "A"})
	p := NewInclusionProcessor(loader.load, 0, nil)

	tests := []string{
		`{{include('a')}}`,
		`{{ include("a") }}`,
		`{{  include('a') }}`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			out, err := p.Process(in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestInclusionNames(t *testing.T) {
	names := InclusionNames("{{ include('b') }}{{ include('a') }}{{ include('b') }}")
	assert.Equal(t, []string{"b", "a"}, names)
	assert.Empty(t, InclusionNames("nothing here"))
}
