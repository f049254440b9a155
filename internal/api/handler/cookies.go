package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setAuthCookies attaches both tokens as http-only, secure-transport cookies.
// The tokens also appear in the response body, so non-browser clients are not
// forced onto the cookie transport.
func setAuthCookies(c echo.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	c.SetCookie(authCookie(accessTokenCookie, accessToken, accessTTL))
	c.SetCookie(authCookie(refreshTokenCookie, refreshToken, refreshTTL))
}

// clearAuthCookies expires both auth cookies.
func clearAuthCookies(c echo.Context) {
	c.SetCookie(authCookie(accessTokenCookie, "", -time.Second))
	c.SetCookie(authCookie(refreshTokenCookie, "", -time.Second))
}

func authCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
