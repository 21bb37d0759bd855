package driven

import (
	"context"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// ListFunc fetches one page of a collection from the backend.
type ListFunc[T any] func(ctx context.Context, q model.ListQuery) (model.Page[T], error)

// DeleteFunc removes one entity from a collection on the backend.
type DeleteFunc func(ctx context.Context, req model.DeleteRequest) (model.DeleteResult, error)

// AuthAPI defines the driven port for the backend's authentication endpoints.
type AuthAPI interface {
	// Login exchanges credentials for an access token and the user's workspaces.
	Login(ctx context.Context, email, password string) (model.LoginResult, error)
}
