package domain

import "time"

// User models a registered account. PasswordHash and RefreshToken are secrets
// and are never serialized to clients.
type User struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	FullName      string    `json:"full_name" bson:"full_name"`
	AvatarURL     string    `json:"avatar" bson:"avatar"`
	CoverImageURL string    `json:"cover_image,omitempty" bson:"cover_image,omitempty"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	RefreshToken  string    `json:"-" bson:"refresh_token"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// HasSession reports whether the user holds an active refresh token.
// An empty token means no active session.
func (u *User) HasSession() bool {
	return u.RefreshToken != ""
}
