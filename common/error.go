package common

import (
	"errors"
	"fmt"
)

// FormatCode identifies a class of snapshot-format consistency violation.
type FormatCode int

const (
	FmtNone FormatCode = iota
	// FmtSegmentOverlap: two segment descriptors claim the same address.
	FmtSegmentOverlap
	// FmtUnsupportedCmd: a display-list command this module refuses to
	// interpret (matrix load).
	FmtUnsupportedCmd
	// FmtBadBranch: a sub-list command with an unrecognized encoding.
	FmtBadBranch
	// FmtDepthExceeded: sub-list nesting deeper than the interpreter allows.
	FmtDepthExceeded
	// FmtOutOfRange: a dereference landed outside the snapshot image.
	FmtOutOfRange
	// FmtVertexSlot: a command addressed a vertex cache slot outside [0,32).
	FmtVertexSlot
)

func (c FormatCode) String() string {
	switch c {
	case FmtSegmentOverlap:
		return "SEGMENT_OVERLAP"
	case FmtUnsupportedCmd:
		return "UNSUPPORTED_CMD"
	case FmtBadBranch:
		return "BAD_BRANCH"
	case FmtDepthExceeded:
		return "DEPTH_EXCEEDED"
	case FmtOutOfRange:
		return "OUT_OF_RANGE"
	case FmtVertexSlot:
		return "VERTEX_SLOT"
	default:
		return "NONE"
	}
}

// FormatError reports a snapshot-format consistency violation. These are the
// fatal tier of the error model: the snapshot is corrupted or uses an
// unsupported variant, no safe partial result exists, and the caller must
// stop using the renderer for this snapshot. It is an error value rather
// than a process abort so hosts can log and shut the affected view down.
type FormatError struct {
	Code    FormatCode
	Addr    uint64
	Message string
}

func NewFormatError(code FormatCode, addr uint64, msg string) *FormatError {
	return &FormatError{Code: code, Addr: addr, Message: msg}
}

func NewFormatErrorf(code FormatCode, addr uint64, format string, args ...interface{}) *FormatError {
	return &FormatError{Code: code, Addr: addr, Message: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("format error %s at 0x%x", e.Code, e.Addr)
	}
	return fmt.Sprintf("format error %s at 0x%x: %s", e.Code, e.Addr, e.Message)
}

// IsFormatError reports whether err is, or wraps, a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
