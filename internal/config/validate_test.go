package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "avicenna",
			Password: "secret", Name: "avicenna", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret:  "access-secret-that-is-at-least-32-chars!",
			RefreshSecret: "refresh-secret-that-is-at-least-32-chr!",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
		},
		Quota: QuotaConfig{HourlyLimit: 10, DailyLimit: 30, MonthlyLimit: 200, Timezone: "UTC"},
		AI:    AIConfig{APIKey: "sk-test", Model: "gpt-4o", MaxTokens: 1000, Temperature: 0.3},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_JWTSecretsMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "the-same-secret-that-is-at-least-32-chars!"
	cfg.JWT.RefreshSecret = "the-same-secret-that-is-at-least-32-chars!"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected 'must differ' error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_QuotaLimitsMustBePositive(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.HourlyLimit = 0
	cfg.Quota.MonthlyLimit = -5
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected quota validation errors")
	}
	if !strings.Contains(err.Error(), "AI_HOURLY_LIMIT") {
		t.Errorf("expected AI_HOURLY_LIMIT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "AI_MONTHLY_LIMIT") {
		t.Errorf("expected AI_MONTHLY_LIMIT error in: %v", err)
	}
}

func TestValidate_QuotaTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.Timezone = "Mars/Olympus_Mons"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AI_QUOTA_TIMEZONE") {
		t.Fatalf("expected AI_QUOTA_TIMEZONE error, got: %v", err)
	}
}

func TestValidate_InvalidPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.DB.Port = 99999
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected port validation errors")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected SERVER_PORT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "DB_PORT") {
		t.Errorf("expected DB_PORT error in: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0},
		DB:     DBConfig{Port: 5432},
		Redis:  RedisConfig{Port: 6379},
		Quota:  QuotaConfig{HourlyLimit: 10, DailyLimit: 30, MonthlyLimit: 200, Timezone: "UTC"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "DB_PASSWORD", "SERVER_PORT"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}
