package types

import "time"

// Config is the top-level configuration for research-admin. It is decoded
// by viper from research-admin.yaml, RESEARCH_ADMIN_* environment variables
// and command-line flags, then validated.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Auth    AuthConfig    `json:"auth" yaml:"auth" mapstructure:"auth"`
	Mock    MockConfig    `json:"mock" yaml:"mock" mapstructure:"mock"`
	Assets  AssetsConfig  `json:"assets" yaml:"assets" mapstructure:"assets"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// HTTPConfig holds settings for the live backend transport.
type HTTPConfig struct {
	// BaseURL is the API root every request path is joined to
	// (e.g. "https://research.example.edu/api").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the per-request timeout (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"min=0"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on 429/503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`

	// RateLimit is the sustained request rate per second; 0 disables throttling.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"min=0"`

	// Burst is the token-bucket burst size used with RateLimit.
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst" validate:"min=0"`
}

// AuthConfig holds identity-provider settings.
type AuthConfig struct {
	// TokenURL is the OpenID Connect token endpoint used for password and
	// refresh_token grants. Empty in mock mode.
	TokenURL string `json:"token_url" yaml:"token_url" mapstructure:"token_url" validate:"omitempty,url"`

	// ClientID is the OAuth2 client identifier.
	ClientID string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`

	// ClientSecret is the OAuth2 client secret. Usually loaded from
	// .secrets/client-secret rather than the config file.
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty" mapstructure:"client_secret"`

	// VerifyPath is the backend path that confirms a token and returns the
	// caller's profile (default "/auth/verify").
	VerifyPath string `json:"verify_path" yaml:"verify_path" mapstructure:"verify_path" validate:"required,startswith=/"`

	// LoginRedirectDelay delays the navigation to the login page after an
	// unrecoverable session failure (default 1.5s).
	LoginRedirectDelay time.Duration `json:"login_redirect_delay" yaml:"login_redirect_delay" mapstructure:"login_redirect_delay"`
}

// MockConfig controls the in-process mock backend.
type MockConfig struct {
	// Enabled routes every request without NoMock to the mock engine.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Addr is the listen address for "research-admin serve" (default ":8787").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`

	// Seed seeds the random source behind rematch and crawler tests.
	// Zero picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// SigningKey signs the HS256 tokens the mock issues. Loaded from
	// .secrets/mock-signing-key when empty.
	SigningKey string `json:"signing_key,omitempty" yaml:"signing_key,omitempty" mapstructure:"signing_key"`

	// TokenTTL is the lifetime of mock access tokens (default 30m).
	TokenTTL time.Duration `json:"token_ttl" yaml:"token_ttl" mapstructure:"token_ttl"`

	// CrawlerSuccessRate is the probability a crawler source test passes (default 0.8).
	CrawlerSuccessRate float64 `json:"crawler_success_rate" yaml:"crawler_success_rate" mapstructure:"crawler_success_rate" validate:"gt=0,max=1"`
}

// AssetsConfig locates uploaded media.
type AssetsConfig struct {
	// BaseURL is joined to relative media URLs. Absolute URLs are kept.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
}

// SessionConfig controls where the durable session tier lives.
type SessionConfig struct {
	// StateDir holds session.db (default ~/.config/research-admin).
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir" validate:"required"`

	// Remember persists logins in the durable tier instead of the
	// process-scoped tier.
	Remember bool `json:"remember" yaml:"remember" mapstructure:"remember"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error disabled"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console"`
}
