package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	authhandler "github.com/fluxynet/blog/internal/auth/handler"
	"github.com/fluxynet/blog/internal/auth/provider/github"
	"github.com/fluxynet/blog/internal/blog"
	bloghandler "github.com/fluxynet/blog/internal/blog/handler"
	"github.com/fluxynet/blog/internal/blog/postgres"
	"github.com/fluxynet/blog/internal/config"
	"github.com/fluxynet/blog/internal/middleware"
	"github.com/fluxynet/blog/internal/session"
)

func newRouter(service string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(service))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// cookieOptions derives the session cookie from the public base URL. The
// cookie is scoped to the base URL's host.
func cookieOptions(cfg config.Config) (session.CookieOptions, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Hostname() == "" {
		return session.CookieOptions{}, fmt.Errorf("invalid base_url %q", cfg.BaseURL)
	}

	return session.CookieOptions{
		Name:     cfg.Auth.CookieName,
		Path:     "/",
		Domain:   u.Hostname(),
		MaxAge:   cfg.Auth.TTL,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// NewAuth builds the public authentication service.
func NewAuth(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.ValidateAuth(); err != nil {
		return nil, err
	}

	cookie, err := cookieOptions(cfg)
	if err != nil {
		return nil, err
	}

	infra, err := setupInfra(ctx, cfg, false)
	if err != nil {
		return nil, err
	}

	store := session.NewRedisStore(infra.Redis.Client, cfg.Auth.TTL)

	authenticator, err := github.New(store, github.Config{
		ClientID:     cfg.Auth.GitHubClientID,
		ClientSecret: cfg.Auth.GitHubClientSecret,
		Org:          cfg.Auth.GitHubOrg,
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Auth.ProviderTimeout,
	})
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	router := newRouter(cfg.Telemetry.ServiceName + "-auth")
	authhandler.NewHandler(authenticator, session.NewManager(store), cfg.BaseURL, cookie).RegisterRoutes(router)

	return newApp("auth", cfg.Auth.ListenAddr, router, infra.Close), nil
}

// NewAdmin builds the article admin service. It shares the session store
// with the auth service but never issues sessions.
func NewAdmin(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.ValidateAdmin(); err != nil {
		return nil, err
	}

	infra, err := setupInfra(ctx, cfg, true)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(session.NewRedisStore(infra.Redis.Client, cfg.Auth.TTL))
	admin := blog.NewAdmin(postgres.New(infra.DB.DB), cfg.Admin.PageSize)

	router := newRouter(cfg.Telemetry.ServiceName + "-admin")

	protected := router.Group("/")
	protected.Use(middleware.GinRequireAuth(middleware.NewAuthMiddleware(sessions, cfg.Auth.CookieName)))

	bloghandler.NewHandler(admin).RegisterRoutes(protected)

	return newApp("admin", cfg.Admin.ListenAddr, router, infra.Close), nil
}
