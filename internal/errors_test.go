package internal

import "testing"

func TestTransferError_IsRetryable(t *testing.T) {
	tests := []struct {
		name string
		kind ErrorKind
		want bool
	}{
		{"transient transport retries", ErrTransientTransport, true},
		{"length mismatch retries", ErrLengthMismatch, true},
		{"rate limited retries", ErrRateLimited, true},
		{"segment verification does not retry", ErrSegmentVerification, false},
		{"final length mismatch does not retry", ErrFinalLengthMismatch, false},
		{"scratch cleanup does not retry", ErrScratchCleanup, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTransferError(0, "test", tt.kind)
			if got := err.IsRetryable(); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransferError_IsFatal(t *testing.T) {
	if !NewSegmentVerificationError(0, 10, 9).IsFatal() {
		t.Errorf("expected segment verification error to be fatal")
	}
	if !NewFinalLengthMismatchError(10, 9).IsFatal() {
		t.Errorf("expected final length mismatch to be fatal")
	}
	if NewTransferError(0, "retry me", ErrTransientTransport).IsFatal() {
		t.Errorf("expected transient transport error to not be fatal")
	}
}

func TestTransferError_WithContextChaining(t *testing.T) {
	err := NewTransferError(500, "boom", ErrTransientTransport).
		WithSuggestion("retry").
		WithContext("attempt", 3)

	if err.Suggestion != "retry" {
		t.Errorf("expected suggestion to be set")
	}
	if err.Context["attempt"] != 3 {
		t.Errorf("expected context to carry attempt=3")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("concurrency", "must be positive").WithSuggestion("use a value >= 1")
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected non-empty error message")
	}
}
