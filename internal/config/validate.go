package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Quota ceilings must be positive; exemption is per-user, not a zero limit
	if c.Quota.HourlyLimit < 1 {
		errs = append(errs, fmt.Sprintf("AI_HOURLY_LIMIT must be positive, got %d", c.Quota.HourlyLimit))
	}
	if c.Quota.DailyLimit < 1 {
		errs = append(errs, fmt.Sprintf("AI_DAILY_LIMIT must be positive, got %d", c.Quota.DailyLimit))
	}
	if c.Quota.MonthlyLimit < 1 {
		errs = append(errs, fmt.Sprintf("AI_MONTHLY_LIMIT must be positive, got %d", c.Quota.MonthlyLimit))
	}
	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("AI_QUOTA_TIMEZONE %q is not a valid IANA timezone", c.Quota.Timezone))
	}

	// AI key: warn only, the AI endpoints degrade to an error response
	if c.AI.APIKey == "" {
		slog.Warn("OPENAI_API_KEY is empty, AI food logging is disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
