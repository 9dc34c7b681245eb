package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file is not
// an error; environment variables alone can configure both services.
const DefaultPath = "config.yaml"

type Config struct {
	BaseURL  string `yaml:"base_url" env:"BLOG_BASE_URL"`
	DSN      string `yaml:"dsn" env:"BLOG_DSN"`
	LogLevel string `yaml:"log_level" env:"BLOG_LOG_LEVEL"`

	Auth      AuthConfig      `yaml:"auth"`
	Admin     AdminConfig     `yaml:"admin"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type AuthConfig struct {
	ListenAddr string        `yaml:"listen_addr" env:"BLOG_AUTH_LISTEN_ADDR"`
	RedisURL   string        `yaml:"redis" env:"BLOG_AUTH_REDIS"`
	TTL        time.Duration `yaml:"ttl" env:"BLOG_AUTH_TTL"`
	CookieName string        `yaml:"cookie" env:"BLOG_AUTH_COOKIE"`

	GitHubClientID     string        `yaml:"gh_client_id" env:"BLOG_AUTH_GH_CLIENT_ID"`
	GitHubClientSecret string        `yaml:"gh_client_secret" env:"BLOG_AUTH_GH_CLIENT_SECRET"`
	GitHubOrg          string        `yaml:"gh_org" env:"BLOG_AUTH_GH_ORG"`
	ProviderTimeout    time.Duration `yaml:"provider_timeout" env:"BLOG_AUTH_PROVIDER_TIMEOUT"`

	Pool PoolConfig `yaml:"pool"`
}

// PoolConfig bounds the Redis connection pool shared by every request.
type PoolConfig struct {
	Size    int           `yaml:"size" env:"BLOG_AUTH_POOL_SIZE"`
	MinIdle int           `yaml:"min_idle" env:"BLOG_AUTH_POOL_MIN_IDLE"`
	Timeout time.Duration `yaml:"timeout" env:"BLOG_AUTH_POOL_TIMEOUT"`
}

type AdminConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"BLOG_ADMIN_LISTEN_ADDR"`
	PageSize   int    `yaml:"page_size" env:"BLOG_ADMIN_PAGE_SIZE"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"BLOG_TELEMETRY_ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"BLOG_TELEMETRY_ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"BLOG_TELEMETRY_SERVICE_NAME"`
}

// Default returns the values used for anything the file and environment
// leave unset.
func Default() Config {
	return Config{
		LogLevel: "info",
		Auth: AuthConfig{
			ListenAddr:      ":8080",
			RedisURL:        "redis://127.0.0.1:6379/0",
			TTL:             24 * time.Hour,
			CookieName:      "sid",
			ProviderTimeout: 10 * time.Second,
			Pool: PoolConfig{
				Size:    10,
				MinIdle: 1,
				Timeout: 4 * time.Second,
			},
		},
		Admin: AdminConfig{
			ListenAddr: ":8081",
			PageSize:   10,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "blog",
		},
	}
}

// Load layers defaults, the YAML file at path and BLOG_* environment
// variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return cfg, nil
}

// ValidateAuth checks what the auth service needs to start. GitHub
// credentials are checked by the authenticator itself.
func (c Config) ValidateAuth() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	}
	if c.Auth.ListenAddr == "" {
		errs = append(errs, errors.New("auth.listen_addr is required"))
	}
	if c.Auth.RedisURL == "" {
		errs = append(errs, errors.New("auth.redis is required"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie is required"))
	}
	if c.Auth.TTL <= 0 {
		errs = append(errs, errors.New("auth.ttl must be positive"))
	}
	if c.Auth.Pool.Size <= 0 {
		errs = append(errs, errors.New("auth.pool.size must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateAdmin checks what the admin service needs to start. It reads
// sessions written by the auth service, so it shares the Redis settings.
func (c Config) ValidateAdmin() error {
	var errs []error
	if c.DSN == "" {
		errs = append(errs, errors.New("dsn is required"))
	}
	if c.Admin.ListenAddr == "" {
		errs = append(errs, errors.New("admin.listen_addr is required"))
	}
	if c.Admin.PageSize <= 0 {
		errs = append(errs, errors.New("admin.page_size must be positive"))
	}
	if c.Auth.RedisURL == "" {
		errs = append(errs, errors.New("auth.redis is required"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie is required"))
	}
	return errors.Join(errs...)
}
