package downloader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"s3fetch/internal"
	"s3fetch/utils"
)

// HTTPTransport speaks plain HTTP to an S3-compatible endpoint: a HEAD
// request for sizing, a ranged GET for segment fetches. It is the production
// implementation of internal.Transport; tests use FakeTransport instead.
type HTTPTransport struct {
	httpClient  *utils.HTTPClient
	endpoint    string
	credentials internal.CredentialProvider
}

var _ internal.Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a transport against endpoint (e.g.
// "https://s3.ap-east-1.amazonaws.com"), signing requests with credentials
// when one is supplied.
func NewHTTPTransport(httpClient *utils.HTTPClient, endpoint string, credentials internal.CredentialProvider) *HTTPTransport {
	return &HTTPTransport{
		httpClient:  httpClient,
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		credentials: credentials,
	}
}

func (t *HTTPTransport) objectURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", t.endpoint, bucket, key)
}

// signableRequest adapts a method/url/header triple to internal.SignableRequest
// so a CredentialProvider can attach signing headers before the request is
// dispatched through utils.HTTPClient.
type signableRequest struct {
	method string
	url    string
	header map[string][]string
}

func (r *signableRequest) Header() map[string][]string { return r.header }
func (r *signableRequest) Method() string               { return r.method }
func (r *signableRequest) URL() string                  { return r.url }

func (t *HTTPTransport) buildHeaders(method, url string) map[string]string {
	req := &signableRequest{method: method, url: url, header: make(map[string][]string)}
	if t.credentials != nil {
		t.credentials.Sign(req)
	}

	flat := make(map[string]string, len(req.header))
	for k, values := range req.header {
		if len(values) > 0 {
			flat[k] = values[0]
		}
	}
	return flat
}

// Head resolves the total object size via an HTTP HEAD request.
func (t *HTTPTransport) Head(ctx context.Context, bucket, key string) (int64, error) {
	url := t.objectURL(bucket, key)
	_, contentLength, err := t.httpClient.Head(ctx, url, t.buildHeaders("HEAD", url))
	if err != nil {
		return 0, err
	}
	if contentLength < 0 {
		return 0, internal.NewTransientTransportError(0, "head response missing Content-Length")
	}
	return contentLength, nil
}

// Get issues a ranged GET for rangeHeader (an inclusive "bytes=a-b" value).
// The content length returned is advisory only: the engine verifies the
// on-disk length after the stream ends rather than trusting this value.
func (t *HTTPTransport) Get(ctx context.Context, bucket, key, rangeHeader string) (int64, io.ReadCloser, error) {
	url := t.objectURL(bucket, key)
	headers := t.buildHeaders("GET", url)
	headers["Range"] = rangeHeader

	resp, err := t.httpClient.GetWithContext(ctx, url, headers)
	if err != nil {
		return 0, nil, err
	}
	return resp.ContentLength, resp.Body, nil
}
