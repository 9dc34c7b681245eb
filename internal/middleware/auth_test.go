package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/session"
	"github.com/fluxynet/blog/internal/session/sessiontest"
)

var octocat = auth.User{ID: 123456, Login: "octocat"}

func newRouter(store *sessiontest.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mw := NewAuthMiddleware(session.NewManager(store), "sid")

	r := gin.New()
	r.Use(GinRequireAuth(mw))
	r.GET("/whoami", func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, u.Login)
	})
	return r
}

func request(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAttachesUser(t *testing.T) {
	store := sessiontest.New()
	store.Put("tok", octocat)

	w := request(newRouter(store), "tok")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "octocat", w.Body.String())
}

func TestRequireAuthRejects(t *testing.T) {
	cases := map[string]struct {
		token  string
		getErr error
	}{
		"no cookie":      {},
		"unknown token":  {token: "nope"},
		"store down":     {token: "tok", getErr: apperr.Connection("reading session", errors.New("refused"))},
		"corrupt record": {token: "tok", getErr: apperr.Serialization("decoding session", errors.New("bad"))},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := sessiontest.New()
			store.Put("tok", octocat)
			store.GetErr = tc.getErr

			w := request(newRouter(store), tc.token)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, apperr.ContentTypeProblemJSON, w.Header().Get("Content-Type"))
		})
	}
}

func TestUserFromContextEmpty(t *testing.T) {
	_, ok := UserFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
