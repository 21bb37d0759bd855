package api

import (
	"context"
	"net/http"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuthAPI = (*Auth)(nil)

// Auth covers the /auth endpoints.
type Auth struct {
	factory *Factory
	anon    *Client
	authed  *Client
}

// NewAuth creates the auth endpoints. Login and the password-recovery calls go
// out unauthenticated; ChangePassword uses the signed-in session.
func NewAuth(f *Factory) *Auth {
	return &Auth{
		factory: f,
		anon:    f.NewClient(false, ""),
		authed:  f.NewClient(true, ""),
	}
}

// Login exchanges email and password for a token.
func (a *Auth) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var env dataEnvelope[model.LoginResult]
	if err := a.anon.Do(ctx, http.MethodPost, "/auth/login", nil, in, &env); err != nil {
		return model.LoginResult{}, err
	}
	return env.Data, nil
}

// ChangePassword changes the signed-in user's password.
func (a *Auth) ChangePassword(ctx context.Context, current, next string) (string, error) {
	in := map[string]string{"current_password": current, "new_password": next}
	var body messageBody
	err := a.authed.Do(ctx, http.MethodPut, "/auth/change-password", nil, in, &body)
	return body.Message, err
}

// ForgotPassword asks the backend to email a reset link.
func (a *Auth) ForgotPassword(ctx context.Context, email string) (string, error) {
	var body messageBody
	err := a.anon.Do(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email}, &body)
	return body.Message, err
}

// ResetPassword sets a new password using the token from a reset link. The
// token is only used when no session token is stored.
func (a *Auth) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	client := a.factory.NewClient(false, resetToken)
	var body messageBody
	err := client.Do(ctx, http.MethodPost, "/auth/reset-password", nil, map[string]string{"password": password}, &body)
	return body.Message, err
}
