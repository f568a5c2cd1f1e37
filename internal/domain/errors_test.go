package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Format(t *testing.T) {
	err := NewDomainError("Recorder.Start", ErrAlreadyActive, "pid 4242")
	want := "Recorder.Start: pid 4242: recording already active"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDomainError_FormatWithoutDetail(t *testing.T) {
	err := NewDomainError("Recorder.Stop", ErrNoActiveSession, "")
	want := "Recorder.Stop: no active recording found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	err := NewDomainError("Sender.Serve", ErrTransfer, "peer gone")
	if !errors.Is(err, ErrTransfer) {
		t.Error("expected errors.Is to match ErrTransfer")
	}
}

func TestWrapOp(t *testing.T) {
	if WrapOp("op", nil) != nil {
		t.Error("WrapOp(nil) should return nil")
	}
	err := WrapOp("Receiver.Receive", ErrTransfer)
	if !errors.Is(err, ErrTransfer) {
		t.Error("wrapped error should match sentinel")
	}
}

func TestErrorCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{nil, CodeUnknown},
		{ErrAlreadyActive, CodeAlreadyActive},
		{NewDomainError("Recorder.Start", ErrInvalidConfig, "no topics"), CodeInvalidConfig},
		{fmt.Errorf("outer: %w", ErrTransferDisabled), CodeTransferDisabled},
		{errors.New("unrelated"), CodeUnknown},
	}
	for _, tt := range tests {
		if got := ErrorCodeOf(tt.err); got != tt.want {
			t.Errorf("ErrorCodeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
