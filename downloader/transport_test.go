package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"s3fetch/internal"
	"s3fetch/utils"
)

func TestHTTPTransport_HeadAndGet(t *testing.T) {
	data := []byte("0123456789")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "10")
			w.WriteHeader(http.StatusOK)
			return
		}
		rangeHeader := r.Header.Get("Range")
		if rangeHeader != "bytes=2-5" {
			t.Errorf("unexpected range header: %q", rangeHeader)
		}
		w.Header().Set("Content-Range", "bytes 2-5/10")
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[2:6])
	}))
	defer server.Close()

	transport := NewHTTPTransport(utils.NewHTTPClient(), server.URL, nil)

	size, err := transport.Head(context.Background(), "bucket", "key")
	if err != nil {
		t.Fatalf("unexpected Head error: %v", err)
	}
	if size != 10 {
		t.Errorf("expected size 10, got %d", size)
	}

	_, body, err := transport.Get(context.Background(), "bucket", "key", "bytes=2-5")
	if err != nil {
		t.Fatalf("unexpected Get error: %v", err)
	}
	defer body.Close()
}

func TestHTTPTransport_SignsRequestsWhenCredentialsProvided(t *testing.T) {
	var sawAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := internal.NewStaticCredentialProvider("AKIDEXAMPLE", "secret")
	transport := NewHTTPTransport(utils.NewHTTPClient(), server.URL, provider)

	if _, err := transport.Head(context.Background(), "bucket", "key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth == "" {
		t.Errorf("expected Authorization header to be set by the credential provider")
	}
}
