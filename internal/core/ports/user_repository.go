package ports

import (
	"context"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// UserUpdate is a partial update of a user record. Nil fields are left
// untouched; a pointer to the empty string writes an empty value (used to
// clear the stored refresh token on logout).
type UserUpdate struct {
	FullName      *string
	Email         *string
	PasswordHash  *string
	RefreshToken  *string
	AvatarURL     *string
	CoverImageURL *string
}

// IsZero reports whether the update carries no fields at all.
func (u UserUpdate) IsZero() bool {
	return u.FullName == nil && u.Email == nil && u.PasswordHash == nil &&
		u.RefreshToken == nil && u.AvatarURL == nil && u.CoverImageURL == nil
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// FindByIdentity looks a user up by username or email; either argument may
	// be empty. Returns domain.ErrUserNotFound when no record matches.
	FindByIdentity(ctx context.Context, username, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts a new user and returns the stored record. Uniqueness of
	// username and email is expected to be pre-checked by the caller; a
	// duplicate-key failure still maps to domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateByID applies a partial update and returns the post-update record.
	UpdateByID(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
}
