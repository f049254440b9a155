package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// errorEnvelope mirrors the success envelope: status code, empty payload,
// message, and a success flag that is always false here.
type errorEnvelope struct {
	StatusCode int            `json:"statusCode"`
	Data       map[string]any `json:"data"`
	Message    string         `json:"message"`
	Success    bool           `json:"success"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the JSON envelope on every error, never a stack trace.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorEnvelope{
			StatusCode: code,
			Data:       map[string]any{},
			Message:    msg,
			Success:    false,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to deterministic HTTP codes. The three
	// refresh-related 401s are distinguished only by message text.
	switch {
	case errors.Is(err, domain.ErrFieldsRequired),
		errors.Is(err, domain.ErrIdentifierRequired),
		errors.Is(err, domain.ErrAvatarRequired),
		errors.Is(err, domain.ErrCoverImageRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrPasswordRequired),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorizedRequest),
		errors.Is(err, domain.ErrInvalidRefreshToken),
		errors.Is(err, domain.ErrRefreshTokenReused):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUploadFailed),
		errors.Is(err, domain.ErrInternal):
		return http.StatusInternalServerError, err.Error()
	}

	// Unexpected error: log the real cause, return its message with a
	// generic 500. Last-resort catch-all, not a substitute for the sentinels.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, err.Error()
}
