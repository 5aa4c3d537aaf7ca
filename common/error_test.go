package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormatCodeString(t *testing.T) {
	tests := []struct {
		code     FormatCode
		expected string
	}{
		{FmtNone, "NONE"},
		{FmtSegmentOverlap, "SEGMENT_OVERLAP"},
		{FmtUnsupportedCmd, "UNSUPPORTED_CMD"},
		{FmtBadBranch, "BAD_BRANCH"},
		{FmtDepthExceeded, "DEPTH_EXCEEDED"},
		{FmtOutOfRange, "OUT_OF_RANGE"},
		{FmtVertexSlot, "VERTEX_SLOT"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.code.String(); got != tt.expected {
				t.Errorf("FormatCode.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormatErrorMessage(t *testing.T) {
	err := NewFormatErrorf(FmtSegmentOverlap, 0x1234, "segments %d and %d", 2, 7)
	msg := err.Error()
	for _, want := range []string{"SEGMENT_OVERLAP", "0x1234", "segments 2 and 7"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	bare := NewFormatError(FmtBadBranch, 0x10, "")
	if !strings.Contains(bare.Error(), "BAD_BRANCH") {
		t.Errorf("Error() = %q, missing code", bare.Error())
	}
}

func TestIsFormatError(t *testing.T) {
	fe := NewFormatError(FmtOutOfRange, 0x40, "past image end")

	if !IsFormatError(fe) {
		t.Error("IsFormatError(FormatError) = false")
	}
	if !IsFormatError(fmt.Errorf("reading node: %w", fe)) {
		t.Error("IsFormatError(wrapped) = false")
	}
	if IsFormatError(errors.New("plain")) {
		t.Error("IsFormatError(plain error) = true")
	}
	if IsFormatError(nil) {
		t.Error("IsFormatError(nil) = true")
	}
}
