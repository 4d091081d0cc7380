package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"sweetshop/internal/auth"
	apperrors "sweetshop/internal/errors"
	"sweetshop/internal/model"
	"sweetshop/internal/service"
)

const claimsContextKey = "claims"

// verifyError marks a token verification failure that is not the token's fault.
type verifyError struct {
	err error
}

func (e *verifyError) Error() string { return e.err.Error() }
func (e *verifyError) Unwrap() error { return e.err }

// Authenticator guards routes with bearer tokens.
type Authenticator struct {
	authService service.AuthService
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(authService service.AuthService) *Authenticator {
	return &Authenticator{authService: authService}
}

// Authenticate requires a valid, unrevoked bearer token for an existing user and
// attaches the caller to the request context.
func (a *Authenticator) Authenticate() echo.MiddlewareFunc {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := a.authService.VerifyToken(c.Request().Context(), token)
			if err != nil && !errors.Is(err, apperrors.ErrInvalidToken) {
				return nil, &verifyError{err: err}
			}
			return claims, err
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var verr *verifyError
			switch {
			case errors.As(err, &verr):
				return verr.err
			case errors.Is(err, apperrors.ErrInvalidToken):
				return apperrors.ErrInvalidToken
			default:
				return apperrors.ErrNoToken
			}
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(a.loadUser(next))
	}
}

func (a *Authenticator) loadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(claimsContextKey).(*auth.Claims)
		if !ok {
			return apperrors.ErrInvalidToken
		}
		userID, err := claims.Subject()
		if err != nil {
			return apperrors.ErrInvalidToken
		}

		ctx := c.Request().Context()
		user, err := a.authService.CurrentUser(ctx, userID)
		if err != nil {
			return err
		}

		c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, &Principal{User: user, Claims: claims})))
		return next(c)
	}
}

// Authorize admits callers whose role is one of roles. It must run after Authenticate.
func Authorize(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c.Request().Context())
			if !ok {
				return apperrors.ErrNotAuthenticated
			}
			for _, role := range roles {
				if p.User.Role == role {
					return next(c)
				}
			}
			return apperrors.ErrForbidden
		}
	}
}
