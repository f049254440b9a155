package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

// SessionService implements login, logout, refresh-token rotation, and
// password change. At most one refresh token is valid per user: every
// login or refresh overwrites the stored token, invalidating any token
// issued earlier.
type SessionService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	cache  ports.UserCache
	log    zerolog.Logger
}

func NewSessionService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, cache ports.UserCache, log zerolog.Logger) *SessionService {
	return &SessionService{repo: repo, hasher: hasher, tokens: tokens, cache: cache, log: log}
}

// Login verifies credentials, issues a fresh token pair, and persists the new
// refresh token on the user record.
func (s *SessionService) Login(ctx context.Context, input ports.LoginInput) (*ports.LoginResult, error) {
	if strings.TrimSpace(input.Username) == "" && strings.TrimSpace(input.Email) == "" {
		return nil, domain.ErrIdentifierRequired
	}
	// Rejected before the existence check so a blank password never reveals
	// whether the account exists.
	if strings.TrimSpace(input.Password) == "" {
		return nil, domain.ErrPasswordRequired
	}

	user, err := s.repo.FindByIdentity(ctx, input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, input.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	pair, updated, err := s.rotateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID).Str("username", updated.Username).Msg("user logged in")

	return &ports.LoginResult{User: updated, Tokens: *pair}, nil
}

// Logout clears the stored refresh token. A second logout finds the token
// already empty and re-clears it, so the operation is idempotent.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	empty := ""
	if _, err := s.repo.UpdateByID(ctx, userID, ports.UserUpdate{RefreshToken: &empty}); err != nil {
		return err
	}
	s.invalidate(ctx, userID)

	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

// Refresh validates the presented refresh token and rotates it. The token
// must match the stored one byte-for-byte: any previously valid token that
// has since been superseded (or cleared by logout) is rejected.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthorizedRequest
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	if user.RefreshToken != refreshToken {
		s.log.Warn().Str("user_id", user.ID).Msg("stale refresh token presented")
		return nil, domain.ErrRefreshTokenReused
	}

	pair, _, err := s.rotateTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ChangePassword verifies the old password and replaces the stored hash.
// This is a deliberate partial write: no other record fields are touched or
// re-validated.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return domain.ErrFieldsRequired
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(user.PasswordHash, oldPassword) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if _, err := s.repo.UpdateByID(ctx, userID, ports.UserUpdate{PasswordHash: &hash}); err != nil {
		return err
	}
	s.invalidate(ctx, userID)

	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// rotateTokens issues a fresh pair and persists the new refresh token,
// returning the pair and the post-update record.
func (s *SessionService) rotateTokens(ctx context.Context, user *domain.User) (*ports.TokenPair, *domain.User, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.repo.UpdateByID(ctx, user.ID, ports.UserUpdate{RefreshToken: &refresh})
	if err != nil {
		return nil, nil, err
	}
	s.invalidate(ctx, user.ID)

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, updated, nil
}

// invalidate drops the cached user after a mutation. Cache failures are
// logged and otherwise ignored.
func (s *SessionService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("user cache invalidation failed")
	}
}
