package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

// ProfileService implements registration and profile mutation. Media files
// are handed to the external store before the record is written; the stored
// fields hold the returned URLs, never file contents.
type ProfileService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	media  ports.MediaStore
	cache  ports.UserCache
	log    zerolog.Logger
}

func NewProfileService(repo ports.UserRepository, hasher ports.PasswordHasher, media ports.MediaStore, cache ports.UserCache, log zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, hasher: hasher, media: media, cache: cache, log: log}
}

// Register creates a new account. Usernames are case-normalized to lowercase
// at write time. A failed cover-image upload is tolerated and stored empty;
// a failed avatar upload aborts registration.
func (s *ProfileService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	for _, field := range []string{input.FullName, input.Username, input.Email, input.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, domain.ErrFieldsRequired
		}
	}

	// Usernames are stored lowercase, so the duplicate check folds case too.
	if _, err := s.repo.FindByIdentity(ctx, strings.ToLower(input.Username), input.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if input.Avatar == nil {
		return nil, domain.ErrAvatarRequired
	}

	avatarURL, err := s.media.Upload(ctx, ports.MediaAvatar, input.Avatar)
	if err != nil || avatarURL == "" {
		s.log.Error().Err(err).Str("username", input.Username).Msg("avatar upload failed")
		return nil, domain.ErrUploadFailed
	}

	coverURL := ""
	if input.CoverImage != nil {
		coverURL, err = s.media.Upload(ctx, ports.MediaCover, input.CoverImage)
		if err != nil {
			s.log.Warn().Err(err).Str("username", input.Username).Msg("cover image upload failed, storing empty")
			coverURL = ""
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:      strings.ToLower(input.Username),
		Email:         input.Email,
		FullName:      input.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	// Re-fetch to confirm the record is readable after the insert.
	stored, err := s.repo.FindByID(ctx, created.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", created.ID).Msg("created user not readable")
		return nil, domain.ErrInternal
	}

	s.log.Info().Str("user_id", stored.ID).Str("username", stored.Username).Msg("user registered")
	return stored, nil
}

// UpdateProfile applies whichever of the two optional fields is present as a
// single partial update. With neither present the record is returned
// unchanged.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input ports.UpdateProfileInput) (*domain.User, error) {
	update := ports.UserUpdate{FullName: input.FullName, Email: input.Email}
	if update.IsZero() {
		return s.repo.FindByID(ctx, userID)
	}

	updated, err := s.repo.UpdateByID(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

// UpdateAvatar uploads a replacement avatar and swaps the stored reference.
// The previous object is not deleted from storage.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, file *ports.FileUpload) (*domain.User, error) {
	if file == nil {
		return nil, domain.ErrAvatarRequired
	}
	return s.replaceImage(ctx, userID, ports.MediaAvatar, file)
}

// UpdateCoverImage uploads a replacement cover image and swaps the stored
// reference.
func (s *ProfileService) UpdateCoverImage(ctx context.Context, userID string, file *ports.FileUpload) (*domain.User, error) {
	if file == nil {
		return nil, domain.ErrCoverImageRequired
	}
	return s.replaceImage(ctx, userID, ports.MediaCover, file)
}

func (s *ProfileService) replaceImage(ctx context.Context, userID string, kind ports.MediaKind, file *ports.FileUpload) (*domain.User, error) {
	url, err := s.media.Upload(ctx, kind, file)
	if err != nil || url == "" {
		s.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("image upload failed")
		return nil, domain.ErrUploadFailed
	}

	update := ports.UserUpdate{}
	switch kind {
	case ports.MediaCover:
		update.CoverImageURL = &url
	default:
		update.AvatarURL = &url
	}

	updated, err := s.repo.UpdateByID(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *ProfileService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("user cache invalidation failed")
	}
}
