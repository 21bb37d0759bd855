package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/washdesk/internal/application"
)

// Header names attached to authenticated requests.
const (
	HeaderAuthorization = "Authorization"
	HeaderWorkspaceID   = "x-workspace-id"
)

// authTransport attaches credentials before a request is sent and tears the
// session down when the backend answers 401.
type authTransport struct {
	requiresAuth  bool
	fallbackToken string
	session       *application.SessionStore
	teardown      *application.SessionTeardown
	next          http.RoundTripper
	logger        *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Never start reading the credential while a teardown is half done.
	t.teardown.Wait()
	cred, gen := t.session.SnapshotWithGeneration()

	if t.requiresAuth || t.fallbackToken != "" {
		token := cred.Token
		if token == "" {
			token = t.fallbackToken
		}
		// No token at all: some endpoints accept anonymous calls, so the
		// request goes out as is.
		if token != "" {
			req = req.Clone(req.Context())
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
			if cred.Workspace != nil && cred.Workspace.ID != "" {
				req.Header.Set(HeaderWorkspaceID, cred.Workspace.ID.String())
			}
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.logger.Warn("request unauthorized", "method", req.Method, "path", req.URL.Path)
		t.teardown.Run(context.WithoutCancel(req.Context()), gen)
	}
	return resp, nil
}

// generationCache is an httpcache.Cache that starts empty whenever the
// signed-in credential changes, so responses for one user or workspace are
// never revalidated against another.
type generationCache struct {
	session *application.SessionStore

	mu    sync.Mutex
	gen   uint64
	cache *httpcache.MemoryCache
}

func newGenerationCache(session *application.SessionStore) *generationCache {
	return &generationCache{session: session}
}

func (c *generationCache) current() *httpcache.MemoryCache {
	gen := c.session.Generation()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil || c.gen != gen {
		c.cache = httpcache.NewMemoryCache()
		c.gen = gen
	}
	return c.cache
}

// Get implements httpcache.Cache.
func (c *generationCache) Get(key string) ([]byte, bool) {
	return c.current().Get(key)
}

// Set implements httpcache.Cache.
func (c *generationCache) Set(key string, responseBytes []byte) {
	c.current().Set(key, responseBytes)
}

// Delete implements httpcache.Cache.
func (c *generationCache) Delete(key string) {
	c.current().Delete(key)
}
