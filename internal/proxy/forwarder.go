package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ForwardedHeaders are copied from the browser request to the backend
var ForwardedHeaders = []string{
	"Content-Type",
	"Accept",
	"Accept-Language",
	"Cookie",
	"X-Request-ID",
}

// RelayedHeaders are copied from the backend response to the browser
var RelayedHeaders = []string{
	"Content-Type",
	"Content-Disposition",
}

// Outbound is one request to the backend
type Outbound struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Upstream is the backend's response, fully read
type Upstream struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Forwarder issues outbound calls against a fixed backend base URL
type Forwarder struct {
	baseURL    string
	httpClient *http.Client
}

// NewForwarder creates a forwarder for baseURL (no trailing slash)
func NewForwarder(baseURL string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			// Redirects are the browser's business
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (f *Forwarder) SetHTTPClient(httpClient *http.Client) {
	f.httpClient = httpClient
}

// BaseURL returns the backend base URL
func (f *Forwarder) BaseURL() string {
	return f.baseURL
}

// Forward performs exactly one backend call. Non-2xx responses are not errors.
func (f *Forwarder) Forward(ctx context.Context, out Outbound) (*Upstream, error) {
	target := f.baseURL + out.Path
	if out.RawQuery != "" {
		target += "?" + out.RawQuery
	}

	var body io.Reader
	if len(out.Body) > 0 {
		body = bytes.NewReader(out.Body)
	}

	req, err := http.NewRequestWithContext(ctx, out.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range out.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUpstreamUnreachable, err)
	}

	return &Upstream{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
