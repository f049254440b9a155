package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 240 * time.Hour
)

// JWTIssuer implements ports.TokenIssuer with HS256-signed tokens. Access and
// refresh tokens use distinct secrets and expiry policies. The clock is
// injectable so token lifetimes can be tested deterministically.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &JWTIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock overrides the issuer's clock. Intended for tests.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	i.now = now
	return i
}

// IssueAccessToken mints the short-lived token carrying the user identity.
func (i *JWTIssuer) IssueAccessToken(user *domain.User) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":       user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"iat":       now.Unix(),
		"exp":       now.Add(i.accessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.accessSecret)
}

// IssueRefreshToken mints the long-lived token carrying only the user id.
func (i *JWTIssuer) IssueRefreshToken(user *domain.User) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(i.refreshTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.refreshSecret)
}

// VerifyRefreshToken checks signature and expiry against the refresh secret
// and returns the embedded user id. Both a bad signature and an expired token
// surface as domain.ErrInvalidRefreshToken.
func (i *JWTIssuer) VerifyRefreshToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.refreshSecret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidRefreshToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrInvalidRefreshToken
	}
	return sub, nil
}
