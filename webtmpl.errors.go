package webtmpl

import (
	"errors"
	"strconv"
	"strings"

	"github.com/itsatony/go-cuserr"
)

// Error message constants
const (
	ErrMsgTemplateNotFound = "template file is missing"
	ErrMsgTemplateRead     = "failed to read template file"
	ErrMsgInvalidFolder    = "template folder does not exist"
	ErrMsgInvalidMode      = "output mode is not supported"
	ErrMsgInclusionLimit   = "template inclusions did not settle"
	ErrMsgNilEngine        = "engine cannot be nil"
)

// Error code constants for categorization
const (
	ErrCodeNotFound        = "WEBTMPL_NOT_FOUND"
	ErrCodeRead            = "WEBTMPL_READ"
	ErrCodeInvalidArgument = "WEBTMPL_INVALID_ARGUMENT"
	ErrCodeInvalidMode     = "WEBTMPL_INVALID_MODE"
	ErrCodeInclusion       = "WEBTMPL_INCLUSION"
)

// Sentinel errors. Every error returned by this package wraps one of them,
// so callers can branch with errors.Is.
var (
	ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)
	ErrInvalidFolder    = errors.New(ErrMsgInvalidFolder)
	ErrInvalidMode      = errors.New(ErrMsgInvalidMode)
	ErrInclusionLimit   = errors.New(ErrMsgInclusionLimit)
)

// NewTemplateNotFoundError creates the error returned when a root or
// included template file does not exist.
func NewTemplateNotFoundError(name, path string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeNotFound, ErrMsgTemplateNotFound+": "+path).
		WithMetadata(MetaKeyTemplateName, name).
		WithMetadata(MetaKeyPath, path)
}

// NewTemplateReadError wraps an I/O failure while reading an existing template.
func NewTemplateReadError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRead, ErrMsgTemplateRead).
		WithMetadata(MetaKeyPath, path)
}

// NewInvalidFolderError creates the error returned by New for a missing root folder.
func NewInvalidFolderError(folder string) error {
	return cuserr.WrapStdError(ErrInvalidFolder, ErrCodeInvalidArgument, ErrMsgInvalidFolder+": "+folder).
		WithMetadata(MetaKeyFolder, folder)
}

// NewInvalidModeError creates the error returned for an unsupported mode.
func NewInvalidModeError(mode string) error {
	return cuserr.WrapStdError(ErrInvalidMode, ErrCodeInvalidMode, ErrMsgInvalidMode+": "+mode).
		WithMetadata(MetaKeyMode, mode).
		WithMetadata(MetaKeySupported, strings.Join(supportedModeNames(), ","))
}

// NewInclusionLimitError is returned when inclusion markers are still
// present after the configured number of passes, usually a cycle.
func NewInclusionLimitError(name string, maxPasses int) error {
	return cuserr.WrapStdError(ErrInclusionLimit, ErrCodeInclusion, ErrMsgInclusionLimit).
		WithMetadata(MetaKeyTemplateName, name).
		WithMetadata(MetaKeyMaxPasses, strconv.Itoa(maxPasses))
}

// IsNotFound reports whether err means a template file is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsInvalidMode reports whether err was caused by an unsupported mode.
func IsInvalidMode(err error) bool {
	return errors.Is(err, ErrInvalidMode)
}

// IsInvalidArgument reports whether err was caused by a bad construction argument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidFolder)
}
