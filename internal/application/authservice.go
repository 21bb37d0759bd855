package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// ErrNoToken is returned by Login when the backend accepted the credentials
// but did not return an access token.
var ErrNoToken = errors.New("login response carried no token")

// AuthService is the auth flow: the only writer of the session besides the
// session teardown.
type AuthService struct {
	api    driven.AuthAPI
	store  *SessionStore
	cache  *QueryCache
	logger *slog.Logger
}

// NewAuthService creates an AuthService. cache may be nil.
func NewAuthService(api driven.AuthAPI, store *SessionStore, cache *QueryCache, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: api, store: store, cache: cache, logger: logger}
}

// Login signs in and stores the token together with the first workspace the
// user belongs to.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if res.Token == "" {
		return model.LoginResult{}, ErrNoToken
	}

	cred := model.Credential{Token: res.Token}
	if len(res.Workspaces) > 0 {
		ws := res.Workspaces[0]
		cred.Workspace = &ws
	}

	s.store.Set(ctx, cred)
	s.resetCache()
	s.logger.Info("signed in", "user", res.User.Email, "workspaces", len(res.Workspaces))
	return res, nil
}

// Logout clears the session. Logging out while signed out is a no-op.
func (s *AuthService) Logout(ctx context.Context) {
	if s.store.Clear(ctx) {
		s.resetCache()
		s.logger.Info("signed out")
	}
}

// UseWorkspace switches the active workspace of the current session.
func (s *AuthService) UseWorkspace(ctx context.Context, ws model.Workspace) error {
	if !s.store.IsAuthenticated() {
		return errors.New("not signed in")
	}
	s.store.SetWorkspace(ctx, &ws)
	s.resetCache()
	s.logger.Info("workspace switched", "workspace_id", ws.ID.String())
	return nil
}

func (s *AuthService) resetCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}
