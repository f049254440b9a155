package domain

import "errors"

// Sentinel errors for every user-visible failure. The HTTP error handler maps
// each one to a status code; services return them unwrapped so callers can
// match with errors.Is.
var (
	ErrFieldsRequired      = errors.New("all fields are required")
	ErrIdentifierRequired  = errors.New("username or email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrInvalidCredentials  = errors.New("invalid user credentials")
	ErrUnauthorizedRequest = errors.New("unauthorized request")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrRefreshTokenReused covers both a token superseded by a later rotation
	// and a token whose session was since cleared by logout.
	ErrRefreshTokenReused = errors.New("refresh token expired or used")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrUserExists         = errors.New("user with email or username already exists")
	ErrAvatarRequired     = errors.New("avatar image is required")
	ErrCoverImageRequired = errors.New("cover image is required")
	ErrUploadFailed       = errors.New("image upload failed")
	ErrInternal           = errors.New("internal server error")
)
