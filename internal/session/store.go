package session

import (
	"context"

	"github.com/fluxynet/blog/internal/auth"
)

// Store owns the token → user mapping. Save mints the token; records expire
// on their own once the store's TTL elapses.
type Store interface {
	Save(ctx context.Context, user auth.User) (token string, err error)
	Get(ctx context.Context, token string) (auth.User, error)
	Delete(ctx context.Context, token string) error
}
