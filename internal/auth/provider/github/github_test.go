package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/session/sessiontest"
)

const (
	testCode     = "the_code"
	testClientID = "test_client_id"
	testSecret   = "test_client_secret"
	testOrg      = "myorg"
	testBaseURL  = "https://website.local"
	accessToken  = "tok_abc"
	octocatJSON  = `{"id":123456,"login":"octocat","name":"The Octocat","avatar_url":"https://example/a.png"}`
)

var octocat = auth.User{
	ID:        123456,
	Login:     "octocat",
	Name:      "The Octocat",
	AvatarURL: "https://example/a.png",
}

// fakeGitHub serves the three endpoints a login touches. Nil handlers use
// the happy-path responses.
type fakeGitHub struct {
	token http.HandlerFunc
	user  http.HandlerFunc
	orgs  http.HandlerFunc
}

func respond(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}
}

func respondJSON(status int, body string) http.HandlerFunc {
	return respond(status, "application/json", body)
}

func tokenOK(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, testCode, r.PostForm.Get("code"))
		assert.Equal(t, testClientID, r.PostForm.Get("client_id"))
		assert.Equal(t, testSecret, r.PostForm.Get("client_secret"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		respondJSON(http.StatusOK, `{"access_token":"tok_abc","token_type":"bearer","scope":"read:org,read:user"}`)(w, r)
	}
}

func authorized(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+accessToken, r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		next(w, r)
	}
}

func (f fakeGitHub) start(t *testing.T) *httptest.Server {
	t.Helper()

	if f.token == nil {
		f.token = tokenOK(t)
	}
	if f.user == nil {
		f.user = respondJSON(http.StatusOK, octocatJSON)
	}
	if f.orgs == nil {
		f.orgs = respondJSON(http.StatusOK, `[{"login":"otherorg"},{"login":"myorg"}]`)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", f.token)
	mux.HandleFunc("/user", authorized(t, f.user))
	mux.HandleFunc("/user/orgs", authorized(t, f.orgs))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(serverURL string) Config {
	return Config{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		Org:          testOrg,
		BaseURL:      testBaseURL,
		Timeout:      2 * time.Second,
		AuthURL:      serverURL + "/login/oauth/authorize",
		TokenURL:     serverURL + "/login/oauth/access_token",
		APIURL:       serverURL,
	}
}

func newTestAuthenticator(t *testing.T, f fakeGitHub) (*Authenticator, *sessiontest.Store) {
	t.Helper()

	srv := f.start(t)
	store := sessiontest.New()

	a, err := New(store, testConfig(srv.URL))
	require.NoError(t, err)

	return a, store
}

func TestLogin(t *testing.T) {
	a, store := newTestAuthenticator(t, fakeGitHub{})

	s, err := a.Login(context.Background(), testCode)
	require.NoError(t, err)

	assert.Equal(t, octocat, s.User)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, 1, store.SaveCalls)

	saved, err := store.Get(context.Background(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, octocat, saved)
}

func TestLoginFollowsOrganizationPages(t *testing.T) {
	a, _ := newTestAuthenticator(t, fakeGitHub{
		orgs: func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				respondJSON(http.StatusOK, `[{"login":"myorg"}]`)(w, r)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/user/orgs?per_page=100&page=2>; rel="next"`, r.Host))
			respondJSON(http.StatusOK, `[{"login":"otherorg"}]`)(w, r)
		},
	})

	s, err := a.Login(context.Background(), testCode)
	require.NoError(t, err)
	assert.Equal(t, "octocat", s.User.Login)
}

func TestLoginRejectsNonMember(t *testing.T) {
	cases := map[string]string{
		"other orgs":     `[{"login":"otherorg"}]`,
		"no orgs":        `[]`,
		"case differs":   `[{"login":"MyOrg"}]`,
		"prefix matches": `[{"login":"myorg-staff"}]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			a, store := newTestAuthenticator(t, fakeGitHub{orgs: respondJSON(http.StatusOK, body)})

			_, err := a.Login(context.Background(), testCode)
			require.ErrorIs(t, err, apperr.ErrPermissionDenied)
			assert.EqualError(t, err, "permission denied: not a member of myorg")
			assert.Equal(t, 0, store.SaveCalls)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestLoginProviderReportedError(t *testing.T) {
	const body = `{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`

	cases := map[string]http.HandlerFunc{
		"json with 200": respondJSON(http.StatusOK, body),
		"json with 400": respondJSON(http.StatusBadRequest, body),
		"form with 200": respond(http.StatusOK, "application/x-www-form-urlencoded",
			"error=bad_verification_code&error_description=The+code+passed+is+incorrect+or+expired."),
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			a, store := newTestAuthenticator(t, fakeGitHub{token: h})

			_, err := a.Login(context.Background(), testCode)
			require.ErrorIs(t, err, apperr.ErrPermissionDenied)
			assert.Contains(t, err.Error(), "bad_verification_code")
			assert.Contains(t, err.Error(), "The code passed is incorrect or expired.")
			assert.Equal(t, 0, store.SaveCalls)
		})
	}
}

func TestLoginEmptyAccessToken(t *testing.T) {
	a, store := newTestAuthenticator(t, fakeGitHub{
		token: respondJSON(http.StatusOK, `{"access_token":"","token_type":"bearer"}`),
	})

	_, err := a.Login(context.Background(), testCode)
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	assert.EqualError(t, err, "permission denied: access token is empty")
	assert.Equal(t, 0, store.SaveCalls)
}

func TestLoginUnparseableTokenResponse(t *testing.T) {
	a, _ := newTestAuthenticator(t, fakeGitHub{
		token: respondJSON(http.StatusOK, `{not json`),
	})

	_, err := a.Login(context.Background(), testCode)
	require.ErrorIs(t, err, apperr.ErrSerialization)
}

func TestLoginTokenEndpointServerError(t *testing.T) {
	a, _ := newTestAuthenticator(t, fakeGitHub{
		token: respond(http.StatusBadGateway, "text/html", "<html>bad gateway</html>"),
	})

	_, err := a.Login(context.Background(), testCode)
	require.ErrorIs(t, err, apperr.ErrConnection)
	assert.Contains(t, err.Error(), "provider returned status 502")
}

func TestLoginProviderUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	store := sessiontest.New()
	a, err := New(store, testConfig(deadURL))
	require.NoError(t, err)

	_, err = a.Login(context.Background(), testCode)
	require.ErrorIs(t, err, apperr.ErrConnection)
	assert.Contains(t, err.Error(), "getting access_token")
}

func TestLoginProviderTimeout(t *testing.T) {
	srv := fakeGitHub{
		token: func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		},
	}.start(t)

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	a, err := New(sessiontest.New(), cfg)
	require.NoError(t, err)

	_, err = a.Login(context.Background(), testCode)
	require.ErrorIs(t, err, apperr.ErrConnection)
}

func TestLoginProfileFailures(t *testing.T) {
	cases := map[string]struct {
		user http.HandlerFunc
		orgs http.HandlerFunc
		want error
		msg  string
	}{
		"malformed user": {
			user: respondJSON(http.StatusOK, `{"id":"not-a-number"}`),
			want: apperr.ErrSerialization,
			msg:  "reading user",
		},
		"user not json": {
			user: respondJSON(http.StatusOK, `<html>`),
			want: apperr.ErrSerialization,
			msg:  "reading user",
		},
		"user unauthorized": {
			user: respondJSON(http.StatusUnauthorized, `{"message":"Bad credentials"}`),
			want: apperr.ErrConnection,
			msg:  "provider returned status 401",
		},
		"malformed orgs": {
			orgs: respondJSON(http.StatusOK, `{"login":"myorg"}`),
			want: apperr.ErrSerialization,
			msg:  "reading user organizations",
		},
		"orgs server error": {
			orgs: respondJSON(http.StatusInternalServerError, `{"message":"oops"}`),
			want: apperr.ErrConnection,
			msg:  "provider returned status 500",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a, store := newTestAuthenticator(t, fakeGitHub{user: tc.user, orgs: tc.orgs})

			_, err := a.Login(context.Background(), testCode)
			require.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), tc.msg)
			assert.Equal(t, 0, store.SaveCalls)
		})
	}
}

func TestLoginStoreFailure(t *testing.T) {
	a, store := newTestAuthenticator(t, fakeGitHub{})
	store.SaveErr = errors.New("pool timeout")

	_, err := a.Login(context.Background(), testCode)
	require.ErrorIs(t, err, apperr.ErrConnection)
	assert.Contains(t, err.Error(), "saving session")
	assert.Equal(t, 1, store.SaveCalls)
}

func TestStartLogin(t *testing.T) {
	srv := fakeGitHub{}.start(t)
	a, err := New(sessiontest.New(), testConfig(srv.URL))
	require.NoError(t, err)

	first := a.StartLogin()
	assert.Equal(t, first, a.StartLogin())

	u, err := url.Parse(first)
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/login/oauth/authorize", u.Scheme+"://"+u.Host+u.Path)

	q := u.Query()
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "https://website.local/auth/login/callback", q.Get("redirect_uri"))
	assert.Equal(t, "read:user read:org", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Empty(t, q.Get("client_secret"))
}

func TestStartLoginDefaultsToGitHub(t *testing.T) {
	a, err := New(sessiontest.New(), Config{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		Org:          testOrg,
		BaseURL:      testBaseURL + "/",
	})
	require.NoError(t, err)

	u, err := url.Parse(a.StartLogin())
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "/login/oauth/authorize", u.Path)
	assert.Equal(t, "https://website.local/auth/login/callback", u.Query().Get("redirect_uri"))
}

func TestNewValidatesConfig(t *testing.T) {
	valid := Config{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		Org:          testOrg,
		BaseURL:      testBaseURL,
	}

	cases := map[string]func(*Config){
		"client id":     func(c *Config) { c.ClientID = "" },
		"client secret": func(c *Config) { c.ClientSecret = "" },
		"organization":  func(c *Config) { c.Org = "" },
		"base url":      func(c *Config) { c.BaseURL = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)

			a, err := New(sessiontest.New(), cfg)
			require.ErrorIs(t, err, apperr.ErrInitialization)
			assert.Contains(t, err.Error(), name)
			assert.Nil(t, a)
		})
	}

	_, err := New(nil, valid)
	require.ErrorIs(t, err, apperr.ErrInitialization)
}
