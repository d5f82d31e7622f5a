package internal

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

type fakeSignableRequest struct {
	method string
	url    string
	header http.Header
}

func (f *fakeSignableRequest) Header() map[string][]string { return f.header }
func (f *fakeSignableRequest) Method() string               { return f.method }
func (f *fakeSignableRequest) URL() string                  { return f.url }

func TestStaticCredentialProvider_Sign(t *testing.T) {
	provider := NewStaticCredentialProvider("AKIDEXAMPLE", "secret")
	req := &fakeSignableRequest{method: "GET", url: "https://example.com/bucket/key", header: http.Header{}}

	provider.Sign(req)

	if req.header.Get("Authorization") == "" {
		t.Fatalf("expected Authorization header to be set")
	}
	if req.header.Get("X-Amz-Date") == "" {
		t.Fatalf("expected X-Amz-Date header to be set")
	}
}

func TestStaticCredentialProvider_Validate(t *testing.T) {
	if err := NewStaticCredentialProvider("", "secret").Validate(); err == nil {
		t.Errorf("expected error for missing access key")
	}
	if err := NewStaticCredentialProvider("key", "").Validate(); err == nil {
		t.Errorf("expected error for missing secret key")
	}
	if err := NewStaticCredentialProvider("key", "secret").Validate(); err != nil {
		t.Errorf("expected no error for complete credentials, got %v", err)
	}
}

func TestLoadCredentialsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials")
	content := "# comment\naccess_key=AKIDEXAMPLE\nsecret_key=supersecret\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	provider, err := LoadCredentialsFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := provider.Validate(); err != nil {
		t.Errorf("expected loaded credentials to validate, got %v", err)
	}
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("S3FETCH_ACCESS_KEY", "AKIDEXAMPLE")
	t.Setenv("S3FETCH_SECRET_KEY", "supersecret")

	provider, err := LoadCredentialsFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := provider.Validate(); err != nil {
		t.Errorf("expected loaded credentials to validate, got %v", err)
	}
}

func TestLoadCredentialsFromEnv_Missing(t *testing.T) {
	t.Setenv("S3FETCH_ACCESS_KEY", "")
	t.Setenv("S3FETCH_SECRET_KEY", "")

	if _, err := LoadCredentialsFromEnv(); err == nil {
		t.Errorf("expected error when no env credentials are set")
	}
}

func TestLoadCredentialsFromFile_MissingSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials")
	if err := os.WriteFile(path, []byte("access_key=AKIDEXAMPLE\n"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadCredentialsFromFile(path); err == nil {
		t.Errorf("expected error for missing secret_key")
	}
}
