package config

import (
	"errors"
	"fmt"
	"strings"
)

// MinSessionSecretLength is the shortest accepted HMAC signing secret.
const MinSessionSecretLength = 32

// Rate limiter backends accepted by RATE_LIMIT_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var problems []string

	if err := ValidateSessionSecret(c.SessionSecret); err != nil {
		problems = append(problems, err.Error())
	}
	if c.SessionTTL <= 0 || c.SessionRememberTTL <= 0 {
		problems = append(problems, "SESSION_TTL and SESSION_REMEMBER_TTL must be positive")
	}
	if c.RateLimitPoints <= 0 {
		problems = append(problems, "RATE_LIMIT_POINTS must be positive")
	}
	if c.RateLimitWindow <= 0 {
		problems = append(problems, "RATE_LIMIT_WINDOW must be positive")
	}
	switch c.RateLimitBackend {
	case BackendMemory, BackendRedis:
	default:
		problems = append(problems, fmt.Sprintf("RATE_LIMIT_BACKEND %q is not one of memory, redis", c.RateLimitBackend))
	}
	if c.MaintenanceMode && c.MaintenanceBypassUsername == "" {
		problems = append(problems, "MAINTENANCE_BYPASS_USERNAME is required when MAINTENANCE_MODE is on")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateSessionSecret ensures SESSION_SECRET meets minimum security requirements
func ValidateSessionSecret(secret string) error {
	if secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(secret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}
	return nil
}
