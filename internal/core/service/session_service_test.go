package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByIdentity(_ context.Context, username, email string) (*domain.User, error) {
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) UpdateByID(_ context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	if update.RefreshToken != nil {
		u.RefreshToken = *update.RefreshToken
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	if update.CoverImageURL != nil {
		u.CoverImageURL = *update.CoverImageURL
	}
	return cloneUser(u), nil
}

func newSessionFixture(t *testing.T) (*SessionService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo()
	hasher := NewBcryptHasher(4)
	issuer := NewJWTIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc := NewSessionService(repo, hasher, issuer, nil, zerolog.Nop())
	return svc, repo
}

func seedUser(t *testing.T, repo *stubUserRepo, username, email, password string) *domain.User {
	t.Helper()
	hash, err := NewBcryptHasher(4).Hash(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	created, err := repo.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        email,
		FullName:     "Test User",
		AvatarURL:    "https://media.example.com/avatars/a.png",
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return created
}

func TestSessionService_Login_Success(t *testing.T) {
	svc, repo := newSessionFixture(t)
	seedUser(t, repo, "alice", "alice@example.com", "s3cret")

	result, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result.Tokens)
	}

	// Round-trip: the returned refresh token is the one now stored.
	stored, _ := repo.FindByID(context.Background(), result.User.ID)
	if stored.RefreshToken != result.Tokens.RefreshToken {
		t.Fatalf("stored refresh token does not match returned one")
	}
}

func TestSessionService_Login_ByEmail(t *testing.T) {
	svc, repo := newSessionFixture(t)
	seedUser(t, repo, "bob", "bob@example.com", "pass")

	if _, err := svc.Login(context.Background(), ports.LoginInput{Email: "bob@example.com", Password: "pass"}); err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
}

func TestSessionService_Login_MissingIdentifier(t *testing.T) {
	svc, _ := newSessionFixture(t)

	_, err := svc.Login(context.Background(), ports.LoginInput{Password: "pass"})
	if !errors.Is(err, domain.ErrIdentifierRequired) {
		t.Fatalf("expected ErrIdentifierRequired, got %v", err)
	}
}

func TestSessionService_Login_BlankPassword(t *testing.T) {
	svc, repo := newSessionFixture(t)
	seedUser(t, repo, "carol", "carol@example.com", "pass")

	// A blank password is rejected before the account lookup, so the same
	// error comes back whether or not the user exists.
	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "carol", Password: "  "})
	if !errors.Is(err, domain.ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	_, err = svc.Login(context.Background(), ports.LoginInput{Username: "nobody", Password: ""})
	if !errors.Is(err, domain.ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired for unknown user, got %v", err)
	}
}

func TestSessionService_Login_UserNotFound(t *testing.T) {
	svc, _ := newSessionFixture(t)

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "ghost", Password: "pass"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSessionService_Login_WrongPassword(t *testing.T) {
	svc, repo := newSessionFixture(t)
	user := seedUser(t, repo, "alice", "alice@example.com", "right")

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// No tokens were issued: the stored refresh token is still empty.
	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.RefreshToken != "" {
		t.Fatalf("refresh token persisted on failed login")
	}
}

func TestSessionService_Refresh_RotatesToken(t *testing.T) {
	svc, repo := newSessionFixture(t)
	seedUser(t, repo, "alice", "alice@example.com", "pass")

	result, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	first := result.Tokens.RefreshToken

	pair, err := svc.Refresh(context.Background(), first)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.RefreshToken == first {
		t.Fatalf("refresh token was not rotated")
	}

	stored, _ := repo.FindByID(context.Background(), result.User.ID)
	if stored.RefreshToken != pair.RefreshToken {
		t.Fatalf("stored token does not match rotated one")
	}

	// The consumed token is now stale: replaying it must fail even though it
	// was valid at issuance.
	if _, err := svc.Refresh(context.Background(), first); !errors.Is(err, domain.ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused for superseded token, got %v", err)
	}
}

func TestSessionService_Refresh_MissingToken(t *testing.T) {
	svc, _ := newSessionFixture(t)

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorizedRequest) {
		t.Fatalf("expected ErrUnauthorizedRequest, got %v", err)
	}
}

func TestSessionService_Refresh_InvalidToken(t *testing.T) {
	svc, _ := newSessionFixture(t)

	if _, err := svc.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestSessionService_Refresh_UnknownUser(t *testing.T) {
	svc, repo := newSessionFixture(t)
	user := seedUser(t, repo, "alice", "alice@example.com", "pass")

	result, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	delete(repo.users, user.ID)

	if _, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for deleted user, got %v", err)
	}
}

func TestSessionService_Refresh_AfterLogout(t *testing.T) {
	svc, repo := newSessionFixture(t)
	seedUser(t, repo, "alice", "alice@example.com", "pass")

	result, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background(), result.User.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// Logout cleared the stored token, so the still-unexpired refresh token
	// fails the stored-token comparison.
	if _, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken); !errors.Is(err, domain.ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused after logout, got %v", err)
	}
}

func TestSessionService_Logout_Idempotent(t *testing.T) {
	svc, repo := newSessionFixture(t)
	seedUser(t, repo, "alice", "alice@example.com", "pass")

	result, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), result.User.ID); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if err := svc.Logout(context.Background(), result.User.ID); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), result.User.ID)
	if stored.HasSession() {
		t.Fatalf("refresh token not cleared: %q", stored.RefreshToken)
	}
}

func TestSessionService_ChangePassword(t *testing.T) {
	svc, repo := newSessionFixture(t)
	user := seedUser(t, repo, "alice", "alice@example.com", "old-pass")

	if err := svc.ChangePassword(context.Background(), user.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "new-pass"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "alice", Password: "old-pass"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials with old password, got %v", err)
	}
}

func TestSessionService_ChangePassword_WrongOld(t *testing.T) {
	svc, repo := newSessionFixture(t)
	user := seedUser(t, repo, "alice", "alice@example.com", "old-pass")

	if err := svc.ChangePassword(context.Background(), user.ID, "bad", "new-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionService_ChangePassword_BlankNew(t *testing.T) {
	svc, repo := newSessionFixture(t)
	user := seedUser(t, repo, "alice", "alice@example.com", "old-pass")

	if err := svc.ChangePassword(context.Background(), user.ID, "old-pass", "  "); !errors.Is(err, domain.ErrFieldsRequired) {
		t.Fatalf("expected ErrFieldsRequired, got %v", err)
	}
}
