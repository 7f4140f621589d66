package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testModes = []string{"html", "raw"}

func TestBlockTags(t *testing.T) {
	text := "<!-- @if_HTML_start-->a@if_html_end-->" +
		"<!-- @if_raw_start-->b@if_raw_end-->" +
		"<!-- @if_html_start-->c@if_html_end-->"
	assert.Equal(t, []string{"html", "raw"}, BlockTags(text))
}

func TestRemoveConditionalModeBlocks(t *testing.T) {
	text := "<!-- @if_html_start-->H<!-- @if_html_end-->" +
		"<!-- @if_raw_start-->R<!-- @if_raw_end-->"

	tests := []struct {
		name string
		mode string
		want string
	}{
		{name: "html keeps html", mode: "html", want: "<!-- @if_html_start-->H<!-- @if_html_end-->"},
		{name: "raw keeps raw", mode: "raw", want: "<!-- @if_raw_start-->R<!-- @if_raw_end-->"},
		{name: "mode is case-insensitive", mode: "HTML", want: "<!-- @if_html_start-->H<!-- @if_html_end-->"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveConditionalModeBlocks(text, tt.mode, testModes))
		})
	}
}

func TestRemoveConditionalModeBlocks_Multiline(t *testing.T) {
	text := "before\n<!-- @if_raw_start-->\nline 1\nline 2\n<!-- @if_raw_end-->\nafter"
	assert.Equal(t, "before\n\nafter", RemoveConditionalModeBlocks(text, "html", testModes))
}

func TestRemoveConditionalModeBlocks_NonGreedy(t *testing.T) {
	text := "<!-- @if_raw_start-->1<!-- @if_raw_end-->keep<!-- @if_raw_start-->2<!-- @if_raw_end-->"
	assert.Equal(t, "keep", RemoveConditionalModeBlocks(text, "html", testModes))
}

func TestRemoveConditionalModeBlocks_IgnoresUnsupportedTags(t *testing.T) {
	text := "<!-- @if_pdf_start-->P<!-- @if_pdf_end--><!-- @if_full_start-->F<!-- @if_full_end-->"
	assert.Equal(t, text, RemoveConditionalModeBlocks(text, "html", testModes))
}

func TestRemoveConditionalModeBlocks_MixedCaseTags(t *testing.T) {
	text := "<!-- @if_RAW_start-->R<!-- @if_Raw_end-->x"
	assert.Equal(t, "x", RemoveConditionalModeBlocks(text, "html", testModes))
}

func TestRemoveConditionalRequestBlocks(t *testing.T) {
	text := "<!-- @if_full_start-->F<!-- @if_full_end--><!-- @if_ajax_start-->A<!-- @if_ajax_end-->"

	assert.Equal(t, "<!-- @if_full_start-->F<!-- @if_full_end-->", RemoveConditionalRequestBlocks(text, false))
	assert.Equal(t, "<!-- @if_ajax_start-->A<!-- @if_ajax_end-->", RemoveConditionalRequestBlocks(text, true))
}

func TestRequestTagToRemove(t *testing.T) {
	assert.Equal(t, RequestTagFull, RequestTagToRemove(true))
	assert.Equal(t, RequestTagAjax, RequestTagToRemove(false))
}

func TestRemoveBlocks_UnclosedBlockStays(t *testing.T) {
	text := "<!-- @if_raw_start-->never closed"
	assert.Equal(t, text, RemoveBlocks(text, "raw"))
}
