package client

import (
	"context"
	"fmt"
	"net/http"

	"sweetshop/internal/model"
)

// AuthResult is the body of a successful register or login.
type AuthResult struct {
	User  model.UserSummary `json:"user"`
	Token string            `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService registers, logs in and out, and answers questions about the stored session.
type AuthService struct {
	c *Client
}

// NewAuthService creates an AuthService on top of c.
func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

// Register creates an account and stores the returned session.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var res AuthResult
	if _, err := s.c.do(ctx, http.MethodPost, "/auth/register", nil, registerRequest{Name: name, Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	if err := s.persist(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login exchanges credentials for a token and stores the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	if _, err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	if err := s.persist(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *AuthService) persist(res *AuthResult) error {
	if res.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	if err := s.c.session.Save(&Session{Token: res.Token, User: res.User}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout asks the server to revoke the token, then forgets the local session
// whether or not the server could be reached.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.IsAuthenticated() {
		_, _ = s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	}
	return s.c.session.Clear()
}

// CurrentUser returns the stored user, or nil when logged out.
func (s *AuthService) CurrentUser() *model.UserSummary {
	session := s.c.Session()
	if session == nil {
		return nil
	}
	u := session.User
	return &u
}

// IsAuthenticated reports whether a token is stored.
func (s *AuthService) IsAuthenticated() bool {
	session := s.c.Session()
	return session != nil && session.Token != ""
}

// IsAdmin reports whether the stored user has the admin role.
func (s *AuthService) IsAdmin() bool {
	u := s.CurrentUser()
	return u != nil && u.Role == model.RoleAdmin
}
