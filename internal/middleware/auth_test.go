package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/auth"
	apperrors "sweetshop/internal/errors"
	"sweetshop/internal/model"
	"sweetshop/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func serve(t *testing.T, mw []echo.MiddlewareFunc, header string) (*Principal, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/sweets", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Principal
	h := func(c echo.Context) error {
		seen, _ = PrincipalFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	err := h(c)
	return seen, err
}

func TestAuthenticate(t *testing.T) {
	jwtService, err := auth.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	user := &model.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Role: model.RoleUser}
	goneID := uuid.New()

	good, goodClaims, err := jwtService.GenerateToken(user.ID)
	require.NoError(t, err)
	orphan, orphanClaims, err := jwtService.GenerateToken(goneID)
	require.NoError(t, err)

	svc := new(MockAuthService)
	svc.On("VerifyToken", mock.Anything, good).Return(goodClaims, nil)
	svc.On("VerifyToken", mock.Anything, orphan).Return(orphanClaims, nil)
	svc.On("VerifyToken", mock.Anything, "expired").Return(nil, apperrors.ErrInvalidToken)
	svc.On("VerifyToken", mock.Anything, "flaky").Return(nil, errors.New("redis exploded"))
	svc.On("CurrentUser", mock.Anything, user.ID).Return(user, nil)
	svc.On("CurrentUser", mock.Anything, goneID).Return(nil, apperrors.ErrUserNotFound)

	authenticate := NewAuthenticator(svc).Authenticate()

	tests := []struct {
		name        string
		header      string
		expectedErr error
	}{
		{name: "missing header", header: "", expectedErr: apperrors.ErrNoToken},
		{name: "not a bearer token", header: "Basic abc", expectedErr: apperrors.ErrNoToken},
		{name: "invalid token", header: "Bearer expired", expectedErr: apperrors.ErrInvalidToken},
		{name: "user no longer exists", header: "Bearer " + orphan, expectedErr: apperrors.ErrUserNotFound},
		{name: "valid token", header: "Bearer " + good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := serve(t, []echo.MiddlewareFunc{authenticate}, tt.header)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, user.ID, p.User.ID)
			assert.Equal(t, goodClaims.ID, p.Claims.ID)
		})
	}

	t.Run("verification failure is not reported as a token problem", func(t *testing.T) {
		_, err := serve(t, []echo.MiddlewareFunc{authenticate}, "Bearer flaky")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrInvalidToken)
		assert.NotErrorIs(t, err, apperrors.ErrNoToken)
	})
}

func TestAuthorize(t *testing.T) {
	jwtService, err := auth.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	customer := &model.User{ID: uuid.New(), Role: model.RoleUser}
	adminToken, adminClaims, err := jwtService.GenerateToken(admin.ID)
	require.NoError(t, err)
	userToken, userClaims, err := jwtService.GenerateToken(customer.ID)
	require.NoError(t, err)

	svc := new(MockAuthService)
	svc.On("VerifyToken", mock.Anything, adminToken).Return(adminClaims, nil)
	svc.On("VerifyToken", mock.Anything, userToken).Return(userClaims, nil)
	svc.On("CurrentUser", mock.Anything, admin.ID).Return(admin, nil)
	svc.On("CurrentUser", mock.Anything, customer.ID).Return(customer, nil)

	authenticate := NewAuthenticator(svc).Authenticate()
	adminOnly := Authorize(model.RoleAdmin)

	p, err := serve(t, []echo.MiddlewareFunc{authenticate, adminOnly}, "Bearer "+adminToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, p.User.ID)

	_, err = serve(t, []echo.MiddlewareFunc{authenticate, adminOnly}, "Bearer "+userToken)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = serve(t, []echo.MiddlewareFunc{authenticate, Authorize(model.RoleUser, model.RoleAdmin)}, "Bearer "+userToken)
	assert.NoError(t, err)

	_, err = serve(t, []echo.MiddlewareFunc{adminOnly}, "")
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}
