package ports

import (
	"context"
	"io"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// FileUpload is an uploaded file independent of the HTTP transport.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// RegisterInput carries all data needed to create a new account. CoverImage
// is optional and may be nil.
type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// UpdateProfileInput carries the optional profile fields. Nil fields are left
// unchanged; supplying neither returns the record as is.
type UpdateProfileInput struct {
	FullName *string
	Email    *string
}

// ProfileService defines registration and profile mutation use cases.
type ProfileService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, file *FileUpload) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, userID string, file *FileUpload) (*domain.User, error)
}
