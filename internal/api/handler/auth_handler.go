package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clipstream/accounts-api/internal/api/metrics"
	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	sessions   ports.SessionService
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(sessions ports.SessionService, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{sessions: sessions, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Login authenticates a user and issues an access/refresh token pair.
//
// @Summary      Login with username or email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      404   {object}  apiResponse
// @Router       /api/v1/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.sessions.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	setAuthCookies(c, result.Tokens.AccessToken, result.Tokens.RefreshToken, h.accessTTL, h.refreshTTL)

	return respond(c, http.StatusOK, loginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "user logged in successfully")
}

// Logout clears the stored refresh token and expires both auth cookies.
//
// @Summary      Logout the current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /api/v1/users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}

	clearAuthCookies(c)
	return respond(c, http.StatusOK, nil, "user logged out")
}

// Refresh exchanges a valid refresh token for a fresh token pair, rotating
// the stored token. The incoming token is read from the cookie or, failing
// that, the request body.
//
// @Summary      Refresh the session tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when not sent as a cookie"
// @Success      200   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Router       /api/v1/users/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	pair, err := h.sessions.Refresh(c.Request().Context(), incomingRefreshToken(c))
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenReused) {
			metrics.TokenRefreshesTotal.WithLabelValues("replay").Inc()
		} else {
			metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		}
		return err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	setAuthCookies(c, pair.AccessToken, pair.RefreshToken, h.accessTTL, h.refreshTTL)

	return respond(c, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "access token refreshed")
}

// ChangePassword verifies the old password and replaces it with the new one.
//
// @Summary      Change the current user's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new passwords"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Router       /api/v1/users/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.sessions.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return respond(c, http.StatusOK, nil, "password changed successfully")
}

// incomingRefreshToken extracts the refresh token from the cookie or request
// body, transport details the session service stays unaware of.
func incomingRefreshToken(c echo.Context) string {
	if ck, err := c.Cookie(refreshTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}
