package config

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminConfig protects the registry reload endpoint. Both the password hash
// and the signing secret must be set for admin routes to be enabled.
type AdminConfig struct {
	PasswordHash string        `yaml:"password_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	BcryptCost   int           `yaml:"bcrypt_cost"`
}

// Enabled reports whether admin routes can be served.
func (c AdminConfig) Enabled() bool {
	return c.PasswordHash != "" && c.JWTSecret != ""
}

func (c AdminConfig) validate() error {
	if (c.PasswordHash == "") != (c.JWTSecret == "") {
		return fmt.Errorf("config error: ADMIN_PASSWORD_HASH and JWT_SECRET must be set together")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("config error: bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.Enabled() && c.TokenTTL < time.Minute {
		return fmt.Errorf("config error: admin token TTL must be at least 1 minute, got %s", c.TokenTTL)
	}
	return nil
}

// HashPassword hashes an admin password with the configured bcrypt cost.
func (c AdminConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks pw against the configured hash.
func (c AdminConfig) VerifyPassword(pw string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw)) == nil
}
