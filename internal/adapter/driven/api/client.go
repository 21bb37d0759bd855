// Package api implements the backoffice backend's HTTP surface: the
// authenticated request client and one thin function per endpoint.
package api

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

	"github.com/ericfisherdev/washdesk/internal/application"
)

// maxResponseBytes caps how much of a response body is read into memory.
const maxResponseBytes = 10 << 20

// Factory builds Clients bound to one backend base URL. All clients share the
// session store, the session teardown and a conditional-request cache that is
// scoped to the current credential.
type Factory struct {
	baseURL  string
	session  *application.SessionStore
	teardown *application.SessionTeardown
	timeout  time.Duration
	base     http.RoundTripper
	cache    *generationCache
	logger   *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(f *Factory) { f.timeout = d }
}

// WithTransport replaces the underlying network transport. Intended for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Factory) { f.base = rt }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) { f.logger = logger }
}

// NewFactory creates a Factory for the backend at baseURL.
func NewFactory(baseURL string, session *application.SessionStore, teardown *application.SessionTeardown, opts ...Option) *Factory {
	f := &Factory{
		baseURL:  strings.TrimRight(baseURL, "/"),
		session:  session,
		teardown: teardown,
		timeout:  30 * time.Second,
		base:     http.DefaultTransport,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.cache = newGenerationCache(session)
	return f
}

// NewClient returns a client for one call site. When requiresAuth is true, or
// a fallbackToken is supplied, requests carry the bearer token (stored token
// first, fallbackToken otherwise) and the active workspace. Without any token
// the request still goes out, unauthenticated.
func (f *Factory) NewClient(requiresAuth bool, fallbackToken string) *Client {
	cached := &httpcache.Transport{
		Transport:           f.base,
		Cache:               f.cache,
		MarkCachedResponses: true,
	}

	return &Client{
		baseURL: f.baseURL,
		http: &http.Client{
			Timeout: f.timeout,
			Transport: &authTransport{
				requiresAuth:  requiresAuth,
				fallbackToken: fallbackToken,
				session:       f.session,
				teardown:      f.teardown,
				next:          cached,
				logger:        f.logger,
			},
		},
		logger: f.logger,
	}
}

// Client sends requests to the backend and decodes JSON responses.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Do sends a JSON request. in is encoded as the body when non-nil; out
// receives the decoded body of a 2xx response when non-nil. Non-2xx
// responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodGet {
		// Freshness is decided by the query cache. The HTTP cache only
		// saves bandwidth through ETag or Last-Modified revalidation.
		req.Header.Set("Cache-Control", "max-age=0")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, path, out)
}

// Get is Do with GET and no body.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) send(req *http.Request, path string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", req.Method, path, err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", path,
		"status", resp.StatusCode,
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(req.Method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, path, err)
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
