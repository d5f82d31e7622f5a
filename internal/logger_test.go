package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestSecureLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, LogLevelWarn, false, false)

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("a warning")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("expected debug/info to be filtered out, got: %s", out)
	}
	if !strings.Contains(out, "a warning") {
		t.Errorf("expected warning to be logged, got: %s", out)
	}
	if !strings.Contains(out, "[WARN]") {
		t.Errorf("expected level tag in output, got: %s", out)
	}
}

func TestSecureLogger_QuietSuppressesBelowError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, LogLevelDebug, false, true)

	logger.Warn("should be suppressed")
	logger.Error("should appear")

	out := buf.String()
	if strings.Contains(out, "should be suppressed") {
		t.Errorf("expected quiet mode to suppress warnings, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected error to still be logged, got: %s", out)
	}
}

func TestAuthHeaderRedactor_RedactsAuthorization(t *testing.T) {
	r := &AuthHeaderRedactor{}
	input := "Authorization: AWS4-HMAC-SHA256 Credential=abc123 sent to example.com"
	out := r.Redact(input)
	if strings.Contains(out, "AWS4-HMAC-SHA256") {
		t.Errorf("expected authorization value to be redacted, got: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected redaction marker in output, got: %s", out)
	}
}

func TestAuthHeaderRedactor_RedactsSignedQueryParam(t *testing.T) {
	r := &AuthHeaderRedactor{}
	input := "GET /bucket/key?X-Amz-Signature=deadbeef&X-Amz-Expires=900"
	out := r.Redact(input)
	if strings.Contains(out, "deadbeef") {
		t.Errorf("expected signature to be redacted, got: %s", out)
	}
}
