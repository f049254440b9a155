package ports

import "github.com/clipstream/accounts-api/internal/core/domain"

// TokenIssuer mints and verifies the signed session tokens. Access tokens are
// short-lived and embed the user identity; refresh tokens are long-lived and
// carry only the user id.
type TokenIssuer interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	// VerifyRefreshToken returns the user id named in the token, or
	// domain.ErrInvalidRefreshToken when the signature is bad or the token has
	// expired.
	VerifyRefreshToken(token string) (string, error)
}
