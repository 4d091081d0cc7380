package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	apperrors "sweetshop/internal/errors"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Message string                 `json:"message,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

// ErrorResponse documents a failed response.
type ErrorResponse struct {
	Success bool                   `json:"success" example:"false"`
	Message string                 `json:"message" example:"Sweet not found"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// HTTPErrorHandler renders every error, including the router's own, as an Envelope.
func HTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status  int
			message string
			fields  []apperrors.FieldError
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = fmt.Sprint(he.Message)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
			}
		} else {
			mapped := apperrors.MapErrorToHTTP(err)
			status, message, fields = mapped.StatusCode, mapped.Message, mapped.Fields
			if status == http.StatusInternalServerError {
				log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, Envelope{Success: false, Message: message, Errors: fields})
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

// invalidBody is returned when the request body cannot be decoded.
func invalidBody() error {
	return apperrors.NewValidationError(apperrors.FieldError{Message: "Invalid request body"})
}
