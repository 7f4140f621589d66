// Package htmlutil holds small HTML and HTTP request helpers shared by the
// template engine and the web handlers: comment stripping, ajax detection,
// current URL computation, query parameters, tag builders, CSV tables and
// file downloads.
package htmlutil

import (
	"regexp"

	"github.com/itsatony/go-webtmpl/fileutil"
)

// Request header constants
const (
	HeaderRequestedWith  = "X-Requested-With"
	RequestedWithXHR     = "xmlhttprequest"
	HeaderForwardedProto = "X-Forwarded-Proto"
	HeaderContentType    = "Content-Type"
	HeaderContentDisp    = "Content-Disposition"
	HeaderContentDesc    = "Content-Description"
	HeaderTransferEncode = "Content-Transfer-Encoding"
	ContentDescription   = "File Transfer"
	SchemeHTTP           = "http"
	SchemeHTTPS          = "https"
	DefaultPortHTTP      = "80"
	DefaultPortHTTPS     = "443"
)

// Error messages
const (
	ErrMsgFileNotFound = "file not found"
	ErrMsgFileOpen     = "failed to open file"
	ErrMsgFileSend     = "failed to send file"
)

// Error codes
const (
	ErrCodeDownload = "HTMLUTIL_DOWNLOAD"
)

// Metadata keys
const (
	MetaKeyFile = "file"
)

var commentRe = regexp.MustCompile(`(?s)<!--.*?-->\n?`)

// RemoveHTMLComments strips every <!-- comment --> from html, together with
// one newline directly following it.
//
//	RemoveHTMLComments("<!-- a comment --><h1>Test</h1><!-- else -->") // "<h1>Test</h1>"
func RemoveHTMLComments(html string) string {
	return commentRe.ReplaceAllLiteralString(html, "")
}

// SanitizePath removes characters that are unsafe in a template or file
// path. It is the same filter the template resolver applies to names.
func SanitizePath(path string) string {
	return fileutil.Sanitize(path)
}
