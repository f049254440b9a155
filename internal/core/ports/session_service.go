package ports

import (
	"context"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// LoginInput carries login credentials. Username or Email identifies the
// account; both may be supplied, at least one must be.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair holds a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

// SessionService defines the session lifecycle use cases: credential
// verification, dual-token issuance, rotation-on-use refresh, and password
// change.
type SessionService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// Logout clears the stored refresh token. Idempotent: logging out an
	// already logged-out user succeeds.
	Logout(ctx context.Context, userID string) error
	// Refresh validates the presented refresh token against the stored one and
	// rotates it, invalidating the token just consumed.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
