package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
)

var octocat = auth.User{
	ID:        123456,
	Login:     "octocat",
	Name:      "The Octocat",
	AvatarURL: "https://example/a.png",
}

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestSaveThenGet(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Save(ctx, octocat)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, octocat, got)

	assert.True(t, mr.Exists("session:"+token))
	assert.Equal(t, time.Hour, mr.TTL("session:"+token))
}

func TestRoundTripKeepsDelimitersInFields(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	u := auth.User{ID: 7, Login: "pipe", Name: "A | B | C", AvatarURL: "https://x/y?a=1|2"}
	token, err := store.Save(ctx, u)
	require.NoError(t, err)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestGetUnknownTokenIsNotFound(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrConnection)
	assert.EqualError(t, err, "session not found")
}

func TestGetAfterExpiryIsNotFound(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Save(ctx, octocat)
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)

	_, err = store.Get(ctx, token)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Save(ctx, octocat)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	require.NoError(t, store.Delete(ctx, token))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, err = store.Get(ctx, token)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetMalformedRecord(t *testing.T) {
	cases := map[string]string{
		"pipe joined":     "123456|octocat",
		"empty":           "",
		"wrong version":   `{"v":2,"id":1,"login":"a","name":"b","avatar_url":"c"}`,
		"missing version": `{"id":1,"login":"a","name":"b","avatar_url":"c"}`,
		"unknown field":   `{"v":1,"id":1,"login":"a","name":"b","avatar_url":"c","admin":true}`,
		"trailing data":   `{"v":1,"id":1,"login":"a","name":"b","avatar_url":"c"} {}`,
		"wrong type":      `{"v":1,"id":"one","login":"a","name":"b","avatar_url":"c"}`,
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			store, mr := newTestStore(t, time.Hour)
			require.NoError(t, mr.Set("session:tok", value))

			_, err := store.Get(context.Background(), "tok")
			require.ErrorIs(t, err, apperr.ErrSerialization)
		})
	}
}

func TestTokensAreDistinct(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		token, err := store.Save(ctx, octocat)
		require.NoError(t, err)
		seen[token] = struct{}{}
	}

	assert.Len(t, seen, n)
}

func TestBackendDownIsConnectionError(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	mr.Close()

	_, err := store.Save(ctx, octocat)
	require.ErrorIs(t, err, apperr.ErrConnection)

	_, err = store.Get(ctx, "tok")
	require.ErrorIs(t, err, apperr.ErrConnection)

	err = store.Delete(ctx, "tok")
	require.ErrorIs(t, err, apperr.ErrConnection)
}
