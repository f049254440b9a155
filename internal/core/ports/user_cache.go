package ports

import (
	"context"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// UserCache is a short-lived cache of authenticated users keyed by id, used
// by the auth middleware to avoid a database round trip per request. A cache
// miss is reported as (nil, nil); cache failures are never fatal.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	// Invalidate drops the cached entry after any mutation of the record.
	Invalidate(ctx context.Context, id string) error
}
