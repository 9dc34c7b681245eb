package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/session"
	"github.com/fluxynet/blog/internal/session/sessiontest"
)

func TestManagerSession(t *testing.T) {
	store := sessiontest.New()
	user := auth.User{ID: 1, Login: "octocat"}
	store.Put("tok", user)

	m := session.NewManager(store)

	got, err := m.Session(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = m.Session(context.Background(), "other")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 2, store.GetCalls)
}

func TestManagerLogout(t *testing.T) {
	store := sessiontest.New()
	store.Put("tok", auth.User{ID: 1})

	m := session.NewManager(store)

	require.NoError(t, m.Logout(context.Background(), "tok"))
	assert.Equal(t, 0, store.Len())

	_, err := m.Session(context.Background(), "tok")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestManagerPropagatesStoreErrors(t *testing.T) {
	store := sessiontest.New()
	store.GetErr = apperr.Connection("reading session", errors.New("dial tcp: refused"))
	store.DeleteErr = apperr.Connection("deleting session", errors.New("dial tcp: refused"))

	m := session.NewManager(store)

	_, err := m.Session(context.Background(), "tok")
	require.ErrorIs(t, err, apperr.ErrConnection)

	err = m.Logout(context.Background(), "tok")
	require.ErrorIs(t, err, apperr.ErrConnection)
	assert.Equal(t, 1, store.DeleteCalls)
}
