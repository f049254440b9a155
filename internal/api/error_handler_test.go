package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	return rec, resp
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrFieldsRequired, http.StatusBadRequest},
		{domain.ErrAvatarRequired, http.StatusBadRequest},
		{domain.ErrPasswordRequired, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthorizedRequest, http.StatusUnauthorized},
		{domain.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{domain.ErrRefreshTokenReused, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrUploadFailed, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec, resp := renderError(t, tc.err)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if resp["success"] != false {
				t.Fatalf("success flag must be false: %+v", resp)
			}
			if resp["message"] != tc.err.Error() {
				t.Fatalf("expected message %q, got %v", tc.err.Error(), resp["message"])
			}
			if resp["statusCode"] != float64(tc.code) {
				t.Fatalf("statusCode field mismatch: %v", resp["statusCode"])
			}
		})
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	rec, resp := renderError(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp["message"] != "invalid payload" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestHTTPErrorHandler_UnknownError(t *testing.T) {
	rec, resp := renderError(t, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp["message"] != "boom" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}
