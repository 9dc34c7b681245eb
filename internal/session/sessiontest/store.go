// Package sessiontest provides an in-memory session.Store for tests.
package sessiontest

import (
	"context"
	"sync"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/session"
)

// Store keeps sessions in a map. Setting one of the *Err fields makes the
// matching operation fail with it; calls are counted either way.
type Store struct {
	mu    sync.Mutex
	users map[string]auth.User

	SaveErr   error
	GetErr    error
	DeleteErr error

	SaveCalls   int
	GetCalls    int
	DeleteCalls int
}

func New() *Store {
	return &Store{users: make(map[string]auth.User)}
}

// Put seeds a session under a known token.
func (s *Store) Put(token string, user auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[token] = user
}

// Len reports how many sessions are currently stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) Save(_ context.Context, user auth.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SaveCalls++
	if s.SaveErr != nil {
		return "", s.SaveErr
	}

	token := session.NewToken()
	s.users[token] = user
	return token, nil
}

func (s *Store) Get(_ context.Context, token string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.GetCalls++
	if s.GetErr != nil {
		return auth.User{}, s.GetErr
	}

	u, ok := s.users[token]
	if !ok {
		return auth.User{}, apperr.NotFound("session")
	}
	return u, nil
}

func (s *Store) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeleteCalls++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	delete(s.users, token)
	return nil
}

var _ session.Store = (*Store)(nil)
