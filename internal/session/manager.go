package session

import (
	"context"

	"github.com/fluxynet/blog/internal/auth"
)

// Manager is the read/invalidate half of Store, for callers that must not
// issue sessions.
type Manager interface {
	Session(ctx context.Context, token string) (auth.User, error)
	Logout(ctx context.Context, token string) error
}

// StoreManager is a Manager backed directly by a Store.
type StoreManager struct {
	store Store
}

func NewManager(store Store) *StoreManager {
	return &StoreManager{store: store}
}

func (m *StoreManager) Session(ctx context.Context, token string) (auth.User, error) {
	return m.store.Get(ctx, token)
}

func (m *StoreManager) Logout(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

var _ Manager = (*StoreManager)(nil)
