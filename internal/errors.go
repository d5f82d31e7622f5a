package internal

import (
	"fmt"
	"strings"
)

// ErrorKind enumerates the error policies from the error-handling design: the
// first seven kinds each map to one documented outcome (retry, local
// recovery, fresh-start, fatal, warning); the remaining kinds classify
// transport status codes and configuration failures.
type ErrorKind int

const (
	ErrTransientTransport ErrorKind = iota // connection reset, DNS, 5xx, premature EOF: retry
	ErrLengthMismatch                      // post-stream length check failed: retry
	ErrOverlongScratch                      // B_i > L_i: recovered locally, not propagated
	ErrInspectionFailure                    // fs stat failed during resume inspection: fresh start
	ErrSegmentVerification                  // assembly found a bad segment: fatal
	ErrFinalLengthMismatch                  // assembled file has wrong size: fatal
	ErrScratchCleanup                       // failed to delete a scratch file: warning
	ErrObjectNotFound                       // head/get returned 404
	ErrAccessDenied                         // head/get returned 401/403
	ErrRateLimited                          // head/get returned 429
	ErrConfigInvalid                        // bad configuration
)

// Severity mirrors the teacher's four-level scale.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (k ErrorKind) String() string {
	switch k {
	case ErrTransientTransport:
		return "TransientTransport"
	case ErrLengthMismatch:
		return "LengthMismatch"
	case ErrOverlongScratch:
		return "OverlongScratch"
	case ErrInspectionFailure:
		return "InspectionFailure"
	case ErrSegmentVerification:
		return "SegmentVerification"
	case ErrFinalLengthMismatch:
		return "FinalLengthMismatch"
	case ErrScratchCleanup:
		return "ScratchCleanup"
	case ErrObjectNotFound:
		return "ObjectNotFound"
	case ErrAccessDenied:
		return "AccessDenied"
	case ErrRateLimited:
		return "RateLimited"
	case ErrConfigInvalid:
		return "ConfigInvalid"
	default:
		return "Unknown"
	}
}

// TransferError is the engine's typed error, carrying enough detail for the
// Supervisor to decide whether to retry, recover locally, or abort fatally.
type TransferError struct {
	Code       int
	Message    string
	Kind       ErrorKind
	Severity   Severity
	Suggestion string
	RetryAfter int
	Context    map[string]interface{}
}

func (e *TransferError) Error() string {
	parts := []string{fmt.Sprintf("transfer error (code: %d, kind: %s)", e.Code, e.Kind.String())}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("suggestion: %s", e.Suggestion))
	}
	return strings.Join(parts, " - ")
}

// DetailedError returns a multi-line message suitable for the log sink.
func (e *TransferError) DetailedError() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s error", e.Severity.String(), e.Kind.String()))
	if e.Code != 0 {
		parts = append(parts, fmt.Sprintf("code: %d", e.Code))
	}
	if e.Message != "" {
		parts = append(parts, fmt.Sprintf("message: %s", e.Message))
	}
	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(contextParts, ", ")))
	}
	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("suggestion: %s", e.Suggestion))
	}
	return strings.Join(parts, "\n")
}

// NewTransferError constructs a TransferError with a default severity derived
// from its kind.
func NewTransferError(code int, message string, kind ErrorKind) *TransferError {
	return &TransferError{
		Code:     code,
		Message:  message,
		Kind:     kind,
		Severity: defaultSeverity(kind),
		Context:  make(map[string]interface{}),
	}
}

func (e *TransferError) WithSuggestion(s string) *TransferError {
	e.Suggestion = s
	return e
}

func (e *TransferError) WithRetryAfter(seconds int) *TransferError {
	e.RetryAfter = seconds
	return e
}

func (e *TransferError) WithContext(key string, value interface{}) *TransferError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsRetryable reports whether the caller should retry (error kinds 1-2 from the
// error-handling design, plus rate limiting); fatal kinds (5-6) and warnings (7)
// are never retryable at the transport layer.
func (e *TransferError) IsRetryable() bool {
	switch e.Kind {
	case ErrTransientTransport, ErrLengthMismatch, ErrRateLimited:
		return true
	default:
		return false
	}
}

// IsFatal reports whether this error should abort the entire run (kinds 5-6:
// only the Assembler raises these).
func (e *TransferError) IsFatal() bool {
	return e.Kind == ErrSegmentVerification || e.Kind == ErrFinalLengthMismatch
}

func defaultSeverity(kind ErrorKind) Severity {
	switch kind {
	case ErrScratchCleanup:
		return SeverityWarning
	case ErrSegmentVerification, ErrFinalLengthMismatch:
		return SeverityCritical
	default:
		return SeverityError
	}
}

// ValidationError represents configuration-time validation failures.
type ValidationError struct {
	Field      string
	Message    string
	Value      interface{}
	Suggestion string
}

func (e *ValidationError) Error() string {
	parts := []string{fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)}
	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("suggestion: %s", e.Suggestion))
	}
	return strings.Join(parts, " - ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewValidationErrorWithValue(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) WithSuggestion(s string) *ValidationError {
	e.Suggestion = s
	return e
}

// Constructors for the transport-facing error kinds raised by utils.HTTPClient.

func NewTransientTransportError(code int, message string) *TransferError {
	return NewTransferError(code, message, ErrTransientTransport).
		WithSuggestion("the engine will retry indefinitely with a fixed backoff")
}

func NewTransportRateLimitedError(code int) *TransferError {
	return NewTransferError(code, "rate limited by transport", ErrRateLimited).
		WithRetryAfter(1)
}

func NewObjectNotFoundError(code int) *TransferError {
	return NewTransferError(code, "object not found", ErrObjectNotFound)
}

func NewAccessDeniedError(code int) *TransferError {
	return NewTransferError(code, "access denied", ErrAccessDenied)
}

// Constructors for the engine-internal error kinds.

func NewLengthMismatchError(expected, actual int64) *TransferError {
	return NewTransferError(0, fmt.Sprintf("expected %d bytes, got %d", expected, actual), ErrLengthMismatch).
		WithContext("expected", expected).
		WithContext("actual", actual)
}

func NewSegmentVerificationError(index int, expected, actual int64) *TransferError {
	return NewTransferError(0, "segment verification failed", ErrSegmentVerification).
		WithContext("segment", index).
		WithContext("expected", expected).
		WithContext("actual", actual)
}

func NewFinalLengthMismatchError(expected, actual int64) *TransferError {
	return NewTransferError(0, "final file length mismatch", ErrFinalLengthMismatch).
		WithContext("expected", expected).
		WithContext("actual", actual)
}
