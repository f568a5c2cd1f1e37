package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. Wrap them with NewDomainError so
// callers can match with errors.Is while the CLI boundary still gets a
// readable message.
var (
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrInvalidConfig    = fmt.Errorf("invalid configuration")
	ErrAlreadyActive    = fmt.Errorf("recording already active")
	ErrNoActiveSession  = fmt.Errorf("no active recording found")
	ErrLaunchFailed     = fmt.Errorf("recorder exited early")
	ErrTransferDisabled = fmt.Errorf("transfer disabled while recording is active")
	ErrTransfer         = fmt.Errorf("transfer failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Recorder.Start")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring and scripting.
type ErrorCode string

// Error codes. Every sentinel error maps to exactly one code.
const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	CodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
	CodeAlreadyActive    ErrorCode = "ALREADY_ACTIVE"
	CodeNoActiveSession  ErrorCode = "NO_ACTIVE_SESSION"
	CodeLaunchFailed     ErrorCode = "LAUNCH_FAILED"
	CodeTransferDisabled ErrorCode = "TRANSFER_DISABLED"
	CodeTransfer         ErrorCode = "TRANSFER_FAILED"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrConfigLoad:       CodeConfigLoad,
	ErrInvalidConfig:    CodeInvalidConfig,
	ErrAlreadyActive:    CodeAlreadyActive,
	ErrNoActiveSession:  CodeNoActiveSession,
	ErrLaunchFailed:     CodeLaunchFailed,
	ErrTransferDisabled: CodeTransferDisabled,
	ErrTransfer:         CodeTransfer,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It walks the error chain with errors.Is and returns CodeUnknown if no
// matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}
