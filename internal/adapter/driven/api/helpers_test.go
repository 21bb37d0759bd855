package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ericfisherdev/washdesk/internal/adapter/driven/api"
	"github.com/ericfisherdev/washdesk/internal/application"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (r *recordingNotifier) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type countingNavigator struct {
	calls atomic.Int32
}

func (n *countingNavigator) ToLogin() { n.calls.Add(1) }

// testEnv is a backend httptest server plus the client-side session wiring.
type testEnv struct {
	server    *httptest.Server
	store     *application.SessionStore
	notifier  *recordingNotifier
	navigator *countingNavigator
	factory   *api.Factory
}

func newTestEnv(t *testing.T, handler http.Handler, opts ...api.Option) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := application.NewSessionStore(nil, nil)
	notifier := &recordingNotifier{}
	navigator := &countingNavigator{}
	teardown := application.NewSessionTeardown(store, notifier, navigator, nil)

	opts = append([]api.Option{api.WithTransport(server.Client().Transport), api.WithTimeout(5 * time.Second)}, opts...)
	return &testEnv{
		server:    server,
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		factory:   api.NewFactory(server.URL, store, teardown, opts...),
	}
}

func (e *testEnv) signIn(token string, workspaceID model.WorkspaceID) {
	cred := model.Credential{Token: token}
	if workspaceID != "" {
		cred.Workspace = &model.Workspace{ID: workspaceID}
	}
	e.store.Set(context.Background(), cred)
}

// headerRecorder captures the auth headers of the last request it served.
type headerRecorder struct {
	mu        sync.Mutex
	auth      string
	workspace string
	hasAuth   bool
	requests  int
}

func (h *headerRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	_, h.hasAuth = r.Header[http.CanonicalHeaderKey(api.HeaderAuthorization)]
	h.auth = r.Header.Get(api.HeaderAuthorization)
	h.workspace = r.Header.Get(api.HeaderWorkspaceID)
	h.requests++
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"data":{}}`))
}
