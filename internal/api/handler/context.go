package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/clipstream/accounts-api/internal/api/middleware"
	"github.com/clipstream/accounts-api/internal/core/domain"
)

// currentUser extracts the authenticated user injected by the Auth
// middleware. Its absence means the route was wired without the middleware;
// the request is rejected rather than served unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.CurrentUserKey).(*domain.User)
	if user == nil {
		return nil, domain.ErrUnauthorizedRequest
	}
	return user, nil
}
