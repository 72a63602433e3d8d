// Package adminapi implements the AdminAPI port against the detection
// service's HTTP admin API.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminAPI = (*Client)(nil)

// maxErrorBody caps how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// Options tunes the transport stack built by NewClient.
type Options struct {
	// Timeout is the per-request client timeout. Zero leaves timing to the
	// underlying transport.
	Timeout time.Duration
	// Cache enables ETag/Last-Modified revalidation of GET responses.
	Cache  bool
	Logger *slog.Logger
}

// Client implements the driven.AdminAPI port over net/http.
type Client struct {
	http    *http.Client // JSON calls; GETs may be answered through the cache.
	stream  *http.Client // Uploads, downloads and detection; never cached.
	baseURL *url.URL
}

// NewClient creates an admin API client with the following transport stack:
//  1. tracing (X-Request-ID header, debug log per round trip)
//  2. httpcache (conditional GET revalidation), when opts.Cache is set;
//     requests always ask for revalidation, never a fresh-cache hit
//  3. http.DefaultTransport
//
// Streaming calls skip the cache so large model files are never buffered.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var jsonTransport http.RoundTripper = http.DefaultTransport
	if opts.Cache {
		cacheTransport := httpcache.NewMemoryCacheTransport()
		cacheTransport.Transport = http.DefaultTransport
		jsonTransport = cacheTransport
	}

	return &Client{
		http:    &http.Client{Timeout: opts.Timeout, Transport: newTracingTransport(jsonTransport, logger)},
		stream:  &http.Client{Timeout: opts.Timeout, Transport: newTracingTransport(http.DefaultTransport, logger)},
		baseURL: u,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient, stream: httpClient, baseURL: u}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing base URL %q: scheme must be http or https", raw)
	}
	return u, nil
}

// endpoint resolves path (and optional query) against the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// newRequest builds a request with an optional bearer token.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodGet {
		// The cache keys on URL alone and sees neither writes nor token
		// changes, so every cached GET must be revalidated by the server.
		req.Header.Set("Cache-Control", "max-age=0")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// newJSONRequest builds a request whose body is v encoded as JSON.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, v any, token string) (*http.Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
	}
	req, err := c.newRequest(ctx, method, path, nil, bytes.NewReader(data), token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req with hc, converts non-2xx responses into *driven.APIError and
// decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// checkResponse returns an *driven.APIError for any non-2xx response.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &driven.APIError{
		StatusCode: resp.StatusCode,
		Detail:     parseErrorDetail(body),
	}
}
