// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads research-admin.yaml, RESEARCH_ADMIN_* environment
// variables and flag overrides into a validated types.Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-admin/internal/secrets"
	"github.com/pdiddy/research-admin/pkg/types"
)

const (
	// Name is the config file base name, without extension.
	Name = "research-admin"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RESEARCH_ADMIN"
)

// SetDefaults registers every key on v so that environment variables bind
// even when no config file mentions the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.base_url", "http://localhost:8787/api")
	v.SetDefault("http.timeout", 15*time.Second)
	v.SetDefault("http.user_agent", "research-admin")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.rate_limit", 0.0)
	v.SetDefault("http.burst", 1)

	v.SetDefault("auth.token_url", "")
	v.SetDefault("auth.client_id", "research-admin")
	v.SetDefault("auth.client_secret", "")
	v.SetDefault("auth.verify_path", "/auth/verify")
	v.SetDefault("auth.login_redirect_delay", 1500*time.Millisecond)

	v.SetDefault("mock.enabled", false)
	v.SetDefault("mock.addr", ":8787")
	v.SetDefault("mock.seed", 0)
	v.SetDefault("mock.signing_key", "")
	v.SetDefault("mock.token_ttl", 30*time.Minute)
	v.SetDefault("mock.crawler_success_rate", 0.8)

	v.SetDefault("assets.base_url", "")

	v.SetDefault("session.state_dir", defaultStateDir())
	v.SetDefault("session.remember", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+Name)
	}
	return filepath.Join(home, ".config", Name)
}

// Prepare configures v to search for research-admin.yaml in the working
// directory and ~/.config/research-admin, or to read file when it is set,
// and to honour RESEARCH_ADMIN_* overrides.
func Prepare(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// Load reads the configuration prepared on v. A missing config file is
// not an error unless file was named explicitly. Secrets fill fields the
// other sources left empty. The result is validated.
func Load(v *viper.Viper, file string, sec secrets.Secrets) (types.Config, error) {
	Prepare(v, file)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	ApplySecrets(&cfg, sec)

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// ApplySecrets copies secrets into credential fields that are still empty.
func ApplySecrets(cfg *types.Config, sec secrets.Secrets) {
	cfg.Auth.ClientSecret = sec.Get(secrets.ClientSecret, cfg.Auth.ClientSecret)
	cfg.Mock.SigningKey = sec.Get(secrets.MockSigningKey, cfg.Mock.SigningKey)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks cfg against its struct tags. The error names every
// failing key in dotted config form.
func Validate(cfg types.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		msgs = append(msgs, fmt.Sprintf("%s (%s)", key, fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}
