package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// dataEnvelope is the backend's single-entity response shape.
type dataEnvelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// messageBody is the response of mutations that only return a message.
// Success is absent on most endpoints; only an explicit false counts.
type messageBody struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Resource is the CRUD surface of one backend collection.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a collection at path (for example "/clients") to client.
func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

// List fetches one page. Page is 1-based; keyword is always sent, empty
// meaning no filter.
func (r *Resource[T]) List(ctx context.Context, q model.ListQuery) (model.Page[T], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("per_page", strconv.Itoa(q.PerPage))
	query.Set("keyword", q.Keyword)

	var page model.Page[T]
	if err := r.client.Get(ctx, r.path, query, &page); err != nil {
		return model.Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// Get fetches one entity by id.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var env dataEnvelope[T]
	err := r.client.Get(ctx, r.entityPath(id), nil, &env)
	return env.Data, err
}

// Create posts a new entity and returns the stored version.
func (r *Resource[T]) Create(ctx context.Context, in any) (T, error) {
	var env dataEnvelope[T]
	err := r.client.Do(ctx, http.MethodPost, r.path, nil, in, &env)
	return env.Data, err
}

// Update replaces the entity id and returns the stored version.
func (r *Resource[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	var env dataEnvelope[T]
	err := r.client.Do(ctx, http.MethodPut, r.entityPath(id), nil, in, &env)
	return env.Data, err
}

// Delete removes the entity named in req. The reason, when given, travels in
// the JSON body alongside the id.
func (r *Resource[T]) Delete(ctx context.Context, req model.DeleteRequest) (model.DeleteResult, error) {
	var body messageBody
	if err := r.client.Do(ctx, http.MethodDelete, r.entityPath(req.ID), nil, req, &body); err != nil {
		return model.DeleteResult{}, err
	}
	return model.DeleteResult{
		Success:   body.Success == nil || *body.Success,
		Message:   body.Message,
		ErrorCode: body.Code,
	}, nil
}

func (r *Resource[T]) entityPath(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

// TopUps is the top-up collection plus its approval actions.
type TopUps struct {
	*Resource[model.TopUp]
}

// Approve marks a pending top-up approved and credits the customer balance.
func (t *TopUps) Approve(ctx context.Context, id int64) (model.TopUp, error) {
	return t.review(ctx, id, "approve", "")
}

// Reject marks a pending top-up rejected with an optional reason.
func (t *TopUps) Reject(ctx context.Context, id int64, reason string) (model.TopUp, error) {
	return t.review(ctx, id, "reject", reason)
}

func (t *TopUps) review(ctx context.Context, id int64, action, reason string) (model.TopUp, error) {
	var in any
	if reason != "" {
		in = map[string]string{"reason": reason}
	}
	var env dataEnvelope[model.TopUp]
	err := t.client.Do(ctx, http.MethodPut, fmt.Sprintf("%s/%d/%s", t.path, id, action), nil, in, &env)
	return env.Data, err
}

// DepositInput is the body of a new deposit.
type DepositInput struct {
	CustomerID int64  `json:"client_id"`
	Amount     int64  `json:"amount"`
	Note       string `json:"note,omitempty"`
}

// Backend groups every endpoint the console talks to.
type Backend struct {
	Auth      *Auth
	Users     *Resource[model.User]
	Customers *Resource[model.Customer]
	TopUps    *TopUps
	Deposits  *Resource[model.Deposit]
	Inventory *Resource[model.InventoryItem]
	Reports   *Reports
	Uploads   *Uploads
}

// NewBackend wires every endpoint to clients built by f.
func NewBackend(f *Factory) *Backend {
	authed := f.NewClient(true, "")
	return &Backend{
		Auth:      NewAuth(f),
		Users:     NewResource[model.User](authed, "/users"),
		Customers: NewResource[model.Customer](authed, "/clients"),
		TopUps:    &TopUps{NewResource[model.TopUp](authed, "/topups")},
		Deposits:  NewResource[model.Deposit](authed, "/deposits"),
		Inventory: NewResource[model.InventoryItem](authed, "/inventories"),
		Reports:   &Reports{client: authed},
		Uploads:   &Uploads{client: authed},
	}
}
