package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

type stubRepo struct {
	user  *domain.User
	calls int
}

func (r *stubRepo) FindByIdentity(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.calls++
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubRepo) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRepo) UpdateByID(context.Context, string, ports.UserUpdate) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

type stubCache struct {
	entries map[string]*domain.User
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*domain.User)}
}

func (c *stubCache) Get(_ context.Context, id string) (*domain.User, error) {
	return c.entries[id], nil
}

func (c *stubCache) Set(_ context.Context, user *domain.User) error {
	c.sets++
	c.entries[user.ID] = user
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

func signAccessToken(t *testing.T, secret, sub string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, req *http.Request, repo *stubRepo, cache ports.UserCache) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", repo, cache)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return rec, called, handler(c)
}

func TestAuth_ValidCookie(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice"}
	repo := &stubRepo{user: user}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signAccessToken(t, "secret", "u1", time.Minute)})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth("secret", repo, nil)(func(c echo.Context) error {
		got, _ := c.Get(CurrentUserKey).(*domain.User)
		if got == nil || got.Username != "alice" {
			t.Fatalf("user not attached to context: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_ValidBearerHeader(t *testing.T) {
	repo := &stubRepo{user: &domain.User{ID: "u1"}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signAccessToken(t, "secret", "u1", time.Minute))

	_, called, err := runAuth(t, req, repo, nil)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuth_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, called, err := runAuth(t, req, &stubRepo{}, nil)
	if !errors.Is(err, domain.ErrUnauthorizedRequest) {
		t.Fatalf("expected ErrUnauthorizedRequest, got %v", err)
	}
	if called {
		t.Fatalf("next called without a token")
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	repo := &stubRepo{user: &domain.User{ID: "u1"}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signAccessToken(t, "secret", "u1", -time.Minute)})

	_, _, err := runAuth(t, req, repo, nil)
	if !errors.Is(err, domain.ErrUnauthorizedRequest) {
		t.Fatalf("expected ErrUnauthorizedRequest, got %v", err)
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	repo := &stubRepo{user: &domain.User{ID: "u1"}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signAccessToken(t, "other-secret", "u1", time.Minute)})

	_, _, err := runAuth(t, req, repo, nil)
	if !errors.Is(err, domain.ErrUnauthorizedRequest) {
		t.Fatalf("expected ErrUnauthorizedRequest, got %v", err)
	}
}

func TestAuth_UnknownUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signAccessToken(t, "secret", "ghost", time.Minute)})

	_, _, err := runAuth(t, req, &stubRepo{}, nil)
	if !errors.Is(err, domain.ErrUnauthorizedRequest) {
		t.Fatalf("expected ErrUnauthorizedRequest, got %v", err)
	}
}

func TestAuth_CachePopulatedOnMiss(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice"}
	repo := &stubRepo{user: user}
	cache := newStubCache()

	token := signAccessToken(t, "secret", "u1", time.Minute)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		if _, _, err := runAuth(t, req, repo, cache); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	// First request misses the cache and loads from the repository; the
	// second is served from the cache.
	if repo.calls != 1 {
		t.Fatalf("expected 1 repository lookup, got %d", repo.calls)
	}
	if cache.sets != 1 {
		t.Fatalf("expected 1 cache set, got %d", cache.sets)
	}
}
