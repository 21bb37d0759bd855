package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// fakeBackend is a minimal laundry back-office API.
type fakeBackend struct {
	expired atomic.Bool

	mu      sync.Mutex
	queries []string
	deletes []model.DeleteRequest
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/auth/login" {
		_, _ = w.Write([]byte(`{"data":{"token":"tok","user":{"name":"Ops","email":"ops@washdesk.test"},"workspaces":[{"id":7,"name":"Main"},{"id":8,"name":"Branch"}]}}`))
		return
	}
	if r.URL.Path == "/health" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if b.expired.Load() || r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"unauthenticated"}`))
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/clients":
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"data":[{"id":42,"name":"Budi","phone":"0812","balance":1500000}],"meta":{"page":3,"per_page":10,"total":21,"total_pages":3}}`))
	case r.Method == http.MethodDelete && r.URL.Path == "/clients/42":
		var req model.DeleteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.deletes = append(b.deletes, req)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"<b>Removed</b>"}`))
	case r.Method == http.MethodDelete && r.URL.Path == "/inventories/5":
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"errors":["Item is in use"]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupCLI(t *testing.T) *fakeBackend {
	t.Helper()

	backend := &fakeBackend{}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	t.Setenv("WASHDESK_API_URL", server.URL)
	t.Setenv("WASHDESK_DB_PATH", filepath.Join(t.TempDir(), "washdesk.db"))
	t.Setenv("WASHDESK_SECRET_KEY", strings.Repeat("ab", 32))
	t.Setenv("WASHDESK_REQUEST_TIMEOUT", "5s")
	t.Setenv("WASHDESK_PAGE_SIZE", "10")
	return backend
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))

	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func login(t *testing.T) {
	t.Helper()
	out, _, err := execute(t, "login", "--email", "ops@washdesk.test", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Ops <ops@washdesk.test>")
}

func TestCLI_LoginPersistsSession(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "login", "--email", "ops@washdesk.test", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "* 7  Main")
	assert.Contains(t, out, "  8  Branch")

	out, _, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace 7 Main")

	_, _, err = execute(t, "logout")
	require.NoError(t, err)

	out, _, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestCLI_ListSendsPagingQuery(t *testing.T) {
	backend := setupCLI(t)
	login(t)

	out, _, err := execute(t, "list", "customers", "--page", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "Budi")
	assert.Contains(t, out, "1.500.000")
	assert.Contains(t, out, "Page 3 of 3, 21 total")
	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.NotEmpty(t, backend.queries)
	assert.Equal(t, "keyword=&page=3&per_page=10", backend.queries[0])
}

func TestCLI_DeletePrintsSanitizedMessage(t *testing.T) {
	backend := setupCLI(t)
	login(t)

	_, stderr, err := execute(t, "delete", "customers", "42", "--reason", "duplicate")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Success: Removed")
	assert.NotContains(t, stderr, "<b>")
	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.deletes, 1)
	assert.Equal(t, model.DeleteRequest{ID: 42, Reason: "duplicate"}, backend.deletes[0])
}

func TestCLI_DeleteFailureShowsBackendError(t *testing.T) {
	setupCLI(t)
	login(t)

	_, stderr, err := execute(t, "delete", "inventory", "5")

	require.Error(t, err)
	assert.Contains(t, stderr, "Failed: Item is in use")
}

func TestCLI_ReadOnlyResourceRejectsDelete(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "delete", "topups", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "topups cannot be deleted")
}

func TestCLI_UnknownResource(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "list", "laundry")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}

func TestCLI_ExpiredSessionSignsOut(t *testing.T) {
	backend := setupCLI(t)
	login(t)
	backend.expired.Store(true)

	_, stderr, err := execute(t, "list", "customers")

	require.Error(t, err)
	assert.Contains(t, stderr, "Session expired")
	assert.Contains(t, stderr, "washdesk login")

	out, _, err := execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestCLI_Ping(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "ping")

	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestFormatAmount(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		1500000:  "1.500.000",
		-25000:   "-25.000",
		12345678: "12.345.678",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatAmount(in), "formatAmount(%d)", in)
	}
}

func TestRenderReport(t *testing.T) {
	out := renderReport(model.Report{
		Name: "revenue",
		From: "2026-01-01",
		To:   "2026-01-31",
		Rows: []model.ReportRow{
			{"day": "2026-01-01", "total": float64(120000)},
			{"day": "2026-01-02", "total": float64(80000)},
		},
		Summary: model.ReportRow{"total": float64(200000)},
	})

	assert.Contains(t, out, "revenue (2026-01-01 to 2026-01-31)")
	assert.Contains(t, out, "120.000")
	assert.Contains(t, out, "total: 200.000")
}
