// Package tui is the terminal storefront: login, registration, the catalogue and the admin inventory actions.
package tui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sweetshop/internal/client"
	"sweetshop/internal/model"
)

const requestTimeout = 15 * time.Second

// Auth is the session side of the API client.
type Auth interface {
	Register(ctx context.Context, name, email, password string) (*client.AuthResult, error)
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser() *model.UserSummary
	IsAuthenticated() bool
	IsAdmin() bool
}

// Sweets is the catalogue side of the API client.
type Sweets interface {
	GetAll(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, p client.SearchParams) ([]model.Sweet, error)
	Create(ctx context.Context, in client.SweetInput) (*model.Sweet, error)
	Update(ctx context.Context, id string, in client.SweetUpdate) (*model.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string, quantity int) (*model.Sweet, string, error)
	Restock(ctx context.Context, id string, quantity int) (*model.Sweet, string, error)
}

var (
	_ Auth   = (*client.AuthService)(nil)
	_ Sweets = (*client.SweetService)(nil)
)

// authDoneMsg is the result of a login or registration.
type authDoneMsg struct {
	user *model.UserSummary
	err  error
}

// sweetsLoadedMsg carries a fresh catalogue listing.
type sweetsLoadedMsg struct {
	sweets []model.Sweet
	err    error
}

// actionDoneMsg is the result of a purchase or an inventory change.
type actionDoneMsg struct {
	status string
	err    error
}

type showLoginMsg struct{}

type showRegisterMsg struct{}

// logoutRequestedMsg asks the root model to drop the session.
type logoutRequestedMsg struct {
	notice string
}

// sessionEndedMsg returns the user to the login screen.
type sessionEndedMsg struct {
	notice string
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// unauthorized reports whether err means the stored token is no longer accepted.
func unauthorized(err error) bool {
	if errors.Is(err, client.ErrSessionExpired) {
		return true
	}
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// errorText prefers the server's message over transport detail.
func errorText(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		if len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != apiErr.Message {
			return apiErr.Message + ": " + apiErr.Errors[0].Message
		}
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
