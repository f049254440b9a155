package ports

import "context"

// MediaKind selects the storage prefix for an uploaded image.
type MediaKind string

const (
	MediaAvatar MediaKind = "avatars"
	MediaCover  MediaKind = "covers"
)

// MediaStore uploads user media to external object storage and returns a
// publicly resolvable URL for the stored object.
type MediaStore interface {
	Upload(ctx context.Context, kind MediaKind, file *FileUpload) (string, error)
}
