package config

import (
	"fmt"
	"os"
	"strconv"
)

// DevJWTSecret is the signing secret used in development mode when JWT_SECRET is unset.
const DevJWTSecret = "dev-secret-change-me"

// defaultExpirationHours keeps sessions alive for a week.
const defaultExpirationHours = 7 * 24

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a JWT configuration from JWT_SECRET and JWT_EXPIRATION_HOURS.
// JWT_SECRET is required unless dev is set, in which case DevJWTSecret is used.
func NewJWTConfig(dev bool) (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" && dev {
		secret = DevJWTSecret
	}
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours := defaultExpirationHours
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = n
	}

	cfg := &JWTConfig{Secret: secret, ExpirationHours: expirationHours}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
