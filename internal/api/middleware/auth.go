package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

// CurrentUserKey is the echo context key holding the authenticated user.
const CurrentUserKey = "currentUser"

// accessTokenCookie is the cookie carrying the access token; a bearer
// Authorization header is accepted as an alternative transport.
const accessTokenCookie = "accessToken"

// Auth validates the access token from the cookie or Authorization header,
// resolves the user it names, and attaches the record to the request context.
// Every failure mode is a 401 "unauthorized request".
func Auth(accessSecret string, users ports.UserRepository, cache ports.UserCache) echo.MiddlewareFunc {
	secret := []byte(accessSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return domain.ErrUnauthorizedRequest
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !tkn.Valid {
				return domain.ErrUnauthorizedRequest
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return domain.ErrUnauthorizedRequest
			}

			user, err := resolveUser(c, sub, users, cache)
			if err != nil {
				return domain.ErrUnauthorizedRequest
			}

			c.Set(CurrentUserKey, user)
			return next(c)
		}
	}
}

// extractToken reads the access token from the cookie, falling back to a
// bearer Authorization header.
func extractToken(c echo.Context) string {
	if ck, err := c.Cookie(accessTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// resolveUser loads the user from the cache, falling back to the repository
// and repopulating the cache on a miss. Cache errors degrade to a repository
// lookup, never to a request failure.
func resolveUser(c echo.Context, id string, users ports.UserRepository, cache ports.UserCache) (*domain.User, error) {
	ctx := c.Request().Context()

	if cache != nil {
		if cached, err := cache.Get(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	user, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		_ = cache.Set(ctx, user)
	}
	return user, nil
}
