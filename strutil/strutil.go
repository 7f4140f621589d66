// Package strutil has string clean-up helpers used when turning user data
// into HTML.
package strutil

import (
	"regexp"
	"strings"
)

var (
	controlRunRe  = regexp.MustCompile("\t\r\n")
	spaceRunRe    = regexp.MustCompile(`\s\s+`)
	base64Pattern = regexp.MustCompile(`^([0-9a-zA-Z+/]{4})*(([0-9a-zA-Z+/]{2}==)|([0-9a-zA-Z+/]{3}=))?$`)
)

// Cleansing trims spaces and quotes from value, drops tab-CR-LF runs and
// collapses whitespace runs into a single space.
//
//	Cleansing(`"  too   much space "`) // "too much space"
func Cleansing(value string) string {
	value = strings.Trim(strings.Trim(value, `" `), "'")
	value = controlRunRe.ReplaceAllLiteralString(value, "")
	return spaceRunRe.ReplaceAllLiteralString(value, " ")
}

// IsBase64 reports whether input looks like standard base64 with padding.
// Empty input is not base64.
func IsBase64(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	return base64Pattern.MatchString(input)
}
