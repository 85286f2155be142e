package config

import (
	"fmt"
	"os"
	"time"
)

// AuthConfig configures session-token issuing and verification.
type AuthConfig struct {
	// Secret signs HS256 session tokens. Required.
	Secret string

	// TokenTTL bounds session lifetime.
	TokenTTL time.Duration
}

func LoadAuthConfigFromEnv() (AuthConfig, error) {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("missing required env var: AUTH_SECRET")
	}

	cfg := AuthConfig{
		Secret:   secret,
		TokenTTL: 24 * time.Hour,
	}

	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("AUTH_TOKEN_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.TokenTTL = d
	}

	return cfg, nil
}
