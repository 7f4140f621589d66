package internal

import (
	"regexp"
	"strings"
	"sync"
)

var (
	blockTagRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(BlockStartPrefix) + `([a-z0-9]+)` + BlockStartSuffix)

	blockReMu    sync.RWMutex
	blockReCache = make(map[string]*regexp.Regexp)
)

// blockPattern returns the compiled pattern matching one block of tag,
// from its start marker to the nearest end marker of the same tag.
func blockPattern(tag string) *regexp.Regexp {
	tag = strings.ToLower(tag)

	blockReMu.RLock()
	re, ok := blockReCache[tag]
	blockReMu.RUnlock()
	if ok {
		return re
	}

	q := regexp.QuoteMeta(tag)
	re = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(BlockStartPrefix) + q + BlockStartSuffix +
		`.*?` + regexp.QuoteMeta(BlockEndPrefix) + q + regexp.QuoteMeta(BlockEndSuffix))

	blockReMu.Lock()
	blockReCache[tag] = re
	blockReMu.Unlock()
	return re
}

// BlockTags returns the distinct block tags that open a block in text,
// lower-cased, in order of first appearance.
func BlockTags(text string) []string {
	matches := blockTagRe.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// RemoveBlocks deletes every block of the given tag, delimiters included.
func RemoveBlocks(text, tag string) string {
	return blockPattern(tag).ReplaceAllLiteralString(text, "")
}

// RemoveConditionalModeBlocks removes the blocks of every supported mode
// present in text that differs from mode. Blocks of the active mode keep
// their content and their delimiter comments. Tags outside supported are
// not mode blocks and stay untouched.
func RemoveConditionalModeBlocks(text, mode string, supported []string) string {
	mode = strings.ToLower(mode)

	allowed := make(map[string]struct{}, len(supported))
	for _, s := range supported {
		allowed[strings.ToLower(s)] = struct{}{}
	}

	for _, tag := range BlockTags(text) {
		if _, ok := allowed[tag]; !ok {
			continue
		}
		if tag == mode {
			continue
		}
		text = RemoveBlocks(text, tag)
	}
	return text
}

// RemoveConditionalRequestBlocks removes the "full" blocks of an ajax
// request, or the "ajax" blocks otherwise. The other tag is kept.
func RemoveConditionalRequestBlocks(text string, isAjax bool) string {
	return RemoveBlocks(text, RequestTagToRemove(isAjax))
}

// RequestTagToRemove returns the request tag whose blocks are dropped.
func RequestTagToRemove(isAjax bool) string {
	if isAjax {
		return RequestTagFull
	}
	return RequestTagAjax
}
