// Package github implements auth.Authenticator with GitHub OAuth apps. A login
// is accepted only for members of one configured organization.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	gh "github.com/google/go-github/v73/github"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	ghoauth "golang.org/x/oauth2/github"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/logger"
	"github.com/fluxynet/blog/internal/session"
)

const (
	DefaultAPIURL  = "https://api.github.com/"
	DefaultTimeout = 10 * time.Second

	userAgent   = "finblog"
	orgsPerPage = 100
)

// Scopes needed to read the profile and the organization list.
var Scopes = []string{"read:user", "read:org"}

type Config struct {
	ClientID     string
	ClientSecret string
	Org          string
	BaseURL      string

	// Timeout bounds every outbound request.
	Timeout time.Duration

	// Endpoint overrides; empty means github.com.
	AuthURL  string
	TokenURL string
	APIURL   string
}

type Authenticator struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiURL     *url.URL
	org        string
	store      session.Store
	tracer     trace.Tracer
}

func New(store session.Store, cfg Config) (*Authenticator, error) {
	switch {
	case cfg.ClientID == "":
		return nil, apperr.Initialization("github client id is empty")
	case cfg.ClientSecret == "":
		return nil, apperr.Initialization("github client secret is empty")
	case cfg.Org == "":
		return nil, apperr.Initialization("github organization is empty")
	case cfg.BaseURL == "":
		return nil, apperr.Initialization("base url is empty")
	case store == nil:
		return nil, apperr.Initialization("session store is nil")
	}

	endpoint := ghoauth.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	rawAPI := cfg.APIURL
	if rawAPI == "" {
		rawAPI = DefaultAPIURL
	}
	if !strings.HasSuffix(rawAPI, "/") {
		rawAPI += "/"
	}
	apiURL, err := url.Parse(rawAPI)
	if err != nil {
		return nil, apperr.Initialization(fmt.Sprintf("invalid github api url %q", cfg.APIURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  strings.TrimSuffix(cfg.BaseURL, "/") + auth.CallbackPath,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		org:        cfg.Org,
		store:      store,
		tracer:     otel.Tracer("github.com/fluxynet/blog/internal/auth/provider/github"),
	}, nil
}

// StartLogin builds the authorize URL. No state parameter is sent.
func (a *Authenticator) StartLogin() string {
	return a.oauth.AuthCodeURL("")
}

// Login runs the code exchange, reads the profile and organizations, and
// saves a session only when the user belongs to the configured org. Nothing
// is retried; the code is single use.
func (a *Authenticator) Login(ctx context.Context, code string) (auth.Session, error) {
	ctx, span := a.tracer.Start(ctx, "github.Login")
	defer span.End()

	s, err := a.login(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return auth.Session{}, err
	}

	span.SetAttributes(attribute.String("github.login", s.User.Login))
	return s, nil
}

func (a *Authenticator) login(ctx context.Context, code string) (auth.Session, error) {
	accessToken, err := a.exchange(ctx, code)
	if err != nil {
		return auth.Session{}, err
	}

	client := a.apiClient(accessToken)

	user, err := a.user(ctx, client)
	if err != nil {
		return auth.Session{}, err
	}

	orgs, err := a.orgs(ctx, client)
	if err != nil {
		return auth.Session{}, err
	}

	if !slices.Contains(orgs, a.org) {
		logger.Warn("login rejected", map[string]any{
			"login": user.Login,
			"org":   a.org,
		})
		return auth.Session{}, apperr.PermissionDenied("not a member of " + a.org)
	}

	token, err := a.store.Save(ctx, user)
	if err != nil {
		return auth.Session{}, apperr.Connection("saving session", err)
	}

	logger.Info("login succeeded", map[string]any{
		"login": user.Login,
		"id":    user.ID,
		"token": logger.Redact(token),
	})

	return auth.Session{User: user, Token: token}, nil
}

func (a *Authenticator) exchange(ctx context.Context, code string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "github.exchange")
	defer span.End()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		err = exchangeError(err)
		span.RecordError(err)
		return "", err
	}

	if tok.AccessToken == "" {
		return "", apperr.PermissionDenied("access token is empty")
	}

	return tok.AccessToken, nil
}

// exchangeError classifies a failed token exchange. A provider error code
// wins over the HTTP status, since GitHub reports bad codes with a 200.
func exchangeError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.ErrorCode != "" {
			msg := rerr.ErrorCode
			if rerr.ErrorDescription != "" {
				msg = fmt.Sprintf("%s (%s)", rerr.ErrorDescription, rerr.ErrorCode)
			}
			return apperr.PermissionDenied(msg)
		}

		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		return apperr.Connection("getting access_token", fmt.Errorf("provider returned status %d", status))
	}

	var uerr *url.Error
	if errors.As(err, &uerr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Connection("getting access_token", err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "missing access_token"):
		return apperr.PermissionDenied("access token is empty")
	case strings.Contains(msg, "cannot fetch token"):
		return apperr.Connection("getting access_token", err)
	default:
		return apperr.Serialization("getting access_token", err)
	}
}

func (a *Authenticator) apiClient(accessToken string) *gh.Client {
	c := gh.NewClient(a.httpClient).WithAuthToken(accessToken)
	c.BaseURL = a.apiURL
	c.UserAgent = userAgent
	return c
}

func (a *Authenticator) user(ctx context.Context, client *gh.Client) (auth.User, error) {
	ctx, span := a.tracer.Start(ctx, "github.user")
	defer span.End()

	u, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		err = apiError("reading user", resp, err)
		span.RecordError(err)
		return auth.User{}, err
	}

	return auth.User{
		ID:        u.GetID(),
		Login:     u.GetLogin(),
		Name:      u.GetName(),
		AvatarURL: u.GetAvatarURL(),
	}, nil
}

func (a *Authenticator) orgs(ctx context.Context, client *gh.Client) ([]string, error) {
	ctx, span := a.tracer.Start(ctx, "github.orgs")
	defer span.End()

	var logins []string
	opts := &gh.ListOptions{PerPage: orgsPerPage}

	for {
		page, resp, err := client.Organizations.List(ctx, "", opts)
		if err != nil {
			err = apiError("reading user organizations", resp, err)
			span.RecordError(err)
			return nil, err
		}

		for _, o := range page {
			logins = append(logins, o.GetLogin())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	span.SetAttributes(attribute.Int("github.orgs", len(logins)))
	return logins, nil
}

// apiError maps a go-github failure: bad JSON is a serialization error,
// everything else (transport, non-2xx) a connection error.
func apiError(step string, resp *gh.Response, err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return apperr.Serialization(step, err)
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return apperr.Connection(step, fmt.Errorf("provider returned status %d", errResp.Response.StatusCode))
	}
	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return apperr.Connection(step, fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	return apperr.Connection(step, err)
}

var _ auth.Authenticator = (*Authenticator)(nil)
