package internal

import (
	"context"
	"io"
)

// Transport is the narrow capability the segmented download engine depends on.
// Production code talks to a real S3-compatible endpoint over HTTP; tests drive a
// programmable in-memory implementation (see downloader.FakeTransport).
type Transport interface {
	// Head resolves the total size in bytes of the object identified by bucket/key.
	Head(ctx context.Context, bucket, key string) (size int64, err error)

	// Get issues a ranged fetch. rangeHeader is an HTTP-style "bytes=a-b" value
	// (inclusive). The returned contentLength is advisory: the engine never trusts
	// it over the on-disk length it observes after the stream ends.
	Get(ctx context.Context, bucket, key, rangeHeader string) (contentLength int64, body io.ReadCloser, err error)
}

// CredentialProvider turns opaque configured credentials into request headers.
// Credential loading itself is an external concern (see spec §1); this interface
// exists so the Transport has something concrete to call.
type CredentialProvider interface {
	Sign(req SignableRequest)
}

// SignableRequest is the minimal surface a CredentialProvider needs to attach
// authentication material to an outgoing request.
type SignableRequest interface {
	Header() map[string][]string
	Method() string
	URL() string
}
