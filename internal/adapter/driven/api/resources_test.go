package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/washdesk/internal/adapter/driven/api"
	"github.com/ericfisherdev/washdesk/internal/application"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

func TestResource_ListSendsPagingQuery(t *testing.T) {
	var got map[string][]string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Budi"},{"id":2,"name":"Sari"}],"meta":{"page":3,"per_page":10,"total":22,"total_pages":3}}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	page, err := backend.Customers.List(context.Background(), model.ListQuery{Page: 3, PerPage: 10})

	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, got["page"])
	assert.Equal(t, []string{"10"}, got["per_page"])
	assert.Equal(t, []string{""}, got["keyword"], "keyword is always sent")
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Sari", page.Items[1].Name)
	assert.Equal(t, 22, page.Meta.Total)
}

func TestResource_ListEmptyDataIsEmptySlice(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"meta":{"page":9,"per_page":10,"total":22,"total_pages":3}}`))
	}))
	backend := api.NewBackend(env.factory)

	page, err := backend.Users.List(context.Background(), model.ListQuery{Page: 9, PerPage: 10})

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestResource_DeleteSendsIDAndReason(t *testing.T) {
	var body model.DeleteRequest
	var method, path string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":"Removed"}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	res, err := backend.Customers.Delete(context.Background(), model.DeleteRequest{ID: 42, Reason: "duplicate"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/clients/42", path)
	assert.Equal(t, model.DeleteRequest{ID: 42, Reason: "duplicate"}, body)
	assert.True(t, res.Success)
	assert.Equal(t, "Removed", res.Message)
}

func TestResource_DeleteFailureCarriesFirstError(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"conflict","errors":["Item is in use"]}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	_, err := backend.Inventory.Delete(context.Background(), model.DeleteRequest{ID: 5})

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Item is in use", apiErr.UserMessage())
	assert.Equal(t, "/inventories/5", apiErr.Path)
}

func TestResource_CreateAndUpdate(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/deposits":
			assert.EqualValues(t, 15000, in["amount"])
			_, _ = w.Write([]byte(`{"data":{"id":9,"client_id":3,"amount":15000}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/deposits/9":
			_, _ = w.Write([]byte(`{"data":{"id":9,"client_id":3,"amount":20000}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)
	ctx := context.Background()

	created, err := backend.Deposits.Create(ctx, api.DepositInput{CustomerID: 3, Amount: 15000})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)

	updated, err := backend.Deposits.Update(ctx, 9, api.DepositInput{CustomerID: 3, Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), updated.Amount)
}

func TestTopUps_ApproveAndReject(t *testing.T) {
	var paths []string
	var rejectBody map[string]string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/reject") {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rejectBody))
			_, _ = w.Write([]byte(`{"data":{"id":4,"status":"rejected"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":4,"status":"approved"}}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)
	ctx := context.Background()

	approved, err := backend.TopUps.Approve(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, model.TopUpApproved, approved.Status)

	rejected, err := backend.TopUps.Reject(ctx, 4, "blurry proof")
	require.NoError(t, err)
	assert.Equal(t, model.TopUpRejected, rejected.Status)

	assert.Equal(t, []string{"/topups/4/approve", "/topups/4/reject"}, paths)
	assert.Equal(t, "blurry proof", rejectBody["reason"])
}

func TestReports_GetFormatsDateRange(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/revenue", r.URL.Path)
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-01-31", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"data":{"rows":[{"day":"2026-01-01","total":120000}]}}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	report, err := backend.Reports.Get(context.Background(), "revenue",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "revenue", report.Name)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "2026-01-01", report.Rows[0]["day"])
}

func TestUploads_MultipleSendsIndexedFields(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "receipts", r.FormValue("folder"))
		assert.Equal(t, "Bearer abc", r.Header.Get(api.HeaderAuthorization))

		for i, want := range []string{"first", "second"} {
			fhs := r.MultipartForm.File[fmt.Sprintf("files[%d]", i)]
			require.Len(t, fhs, 1)
			f, err := fhs[0].Open()
			require.NoError(t, err)
			data, err := io.ReadAll(f)
			require.NoError(t, err)
			_ = f.Close()
			assert.Equal(t, want, string(data))
		}
		_, _ = w.Write([]byte(`{"data":[{"key":"a"},{"key":"b"}]}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	uploads, err := backend.Uploads.Multiple(context.Background(), []api.UploadFile{
		{Name: "a.txt", Reader: strings.NewReader("first")},
		{Name: "b.txt", Reader: strings.NewReader("second")},
	}, "receipts")

	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "b", uploads[1].Key)
}

func TestUploads_SingleUsesFileField(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uploads/single", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "proof.jpg", hdr.Filename)
		assert.Empty(t, r.FormValue("folder"))
		_, _ = w.Write([]byte(`{"data":{"key":"proof-1","name":"proof.jpg"}}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	up, err := backend.Uploads.Single(context.Background(), api.UploadFile{Name: "proof.jpg", Reader: strings.NewReader("jpeg")}, "")

	require.NoError(t, err)
	assert.Equal(t, "proof-1", up.Key)
}

// cachedCustomers serves /clients with a long max-age, the way a backend
// behind a caching proxy would, and removes customers on DELETE.
type cachedCustomers struct {
	mu    sync.Mutex
	items map[int64]bool
	gets  int
}

func (c *cachedCustomers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/clients":
		c.gets++
		var rows []string
		for id := range c.items {
			rows = append(rows, fmt.Sprintf(`{"id":%d,"name":"x"}`, id))
		}
		w.Header().Set("Cache-Control", "private, max-age=60")
		_, _ = fmt.Fprintf(w, `{"data":[%s],"meta":{"page":1,"per_page":10,"total":%d,"total_pages":1}}`,
			strings.Join(rows, ","), len(rows))
	case r.Method == http.MethodDelete && r.URL.Path == "/clients/42":
		delete(c.items, 42)
		_, _ = w.Write([]byte(`{"message":"Removed"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestResource_DeleteThenRefreshBypassesFreshHTTPCache(t *testing.T) {
	backendState := &cachedCustomers{items: map[int64]bool{42: true}}
	env := newTestEnv(t, backendState)
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)
	ctx := context.Background()

	ctrl := application.NewListController[model.Customer](ctx, "customers",
		backend.Customers.List, backend.Customers.Delete,
		application.NewQueryCache(time.Minute), env.notifier,
		application.ListControllerConfig{PerPage: 10}, nil)
	t.Cleanup(ctrl.Close)

	require.NoError(t, ctrl.Refresh(ctx))
	require.Len(t, ctrl.State().Data.Items, 1)

	require.NoError(t, ctrl.RequestDelete(ctx, model.DeleteRequest{ID: 42}, nil))
	require.NoError(t, ctrl.Refresh(ctx))

	assert.Empty(t, ctrl.State().Data.Items)
	backendState.mu.Lock()
	defer backendState.mu.Unlock()
	assert.GreaterOrEqual(t, backendState.gets, 2, "the list is refetched from the server after a delete")
}

func TestResource_DeleteExplicitFailureIsRejected(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"Customer has open orders","code":"HAS_ORDERS"}`))
	}))
	env.signIn("abc", "7")
	backend := api.NewBackend(env.factory)

	res, err := backend.Customers.Delete(context.Background(), model.DeleteRequest{ID: 42})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "HAS_ORDERS", res.ErrorCode)

	ctrl := application.NewListController[model.Customer](context.Background(), "customers",
		backend.Customers.List, backend.Customers.Delete,
		application.NewQueryCache(time.Minute), env.notifier,
		application.ListControllerConfig{}, nil)
	t.Cleanup(ctrl.Close)

	err = ctrl.RequestDelete(context.Background(), model.DeleteRequest{ID: 42}, nil)

	var rejected *application.DeleteRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Customer has open orders", rejected.UserMessage())
	assert.Equal(t, 1, env.notifier.count())
}
