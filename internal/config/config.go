package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Guard    GuardConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret      string
	AdminCode      string // plain access code (compared in constant time)
	AdminCodeHash  string // bcrypt hash; takes precedence over AdminCode
	UnlockKey      string // developer key gating the unlock endpoint
	SessionExpiry  time.Duration
	CookieSecure   bool
}

type GuardConfig struct {
	Policy          string // "timed" or "permanent"
	MaxAttempts     int
	LockoutDuration time.Duration
	AttemptTTL      time.Duration
	SweepInterval   time.Duration
	Store           string // "memory" or "postgres"
	TrustedProxies  []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "chhaya_billing"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Auth: AuthConfig{
			JWTSecret:     jwtSecret,
			AdminCode:     getEnv("ADMIN_CODE", ""),
			AdminCodeHash: getEnv("ADMIN_CODE_HASH", ""),
			UnlockKey:     getEnv("DEVELOPER_UNLOCK_KEY", ""),
			SessionExpiry: getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
			CookieSecure:  env == "production",
		},
		Guard: GuardConfig{
			Policy:          getEnv("LOCKOUT_POLICY", "timed"),
			MaxAttempts:     getEnvAsInt("MAX_LOGIN_ATTEMPTS", 3),
			LockoutDuration: getEnvAsDuration("LOCKOUT_DURATION", 30*time.Minute),
			AttemptTTL:      getEnvAsDuration("ATTEMPT_TTL", 1*time.Hour),
			SweepInterval:   getEnvAsDuration("ATTEMPT_SWEEP_INTERVAL", 1*time.Hour),
			Store:           getEnv("GUARD_STORE", "memory"),
			TrustedProxies:  parseList(getEnv("TRUSTED_PROXIES", "")),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.Auth.AdminCode == "" && cfg.Auth.AdminCodeHash == "" {
		return nil, fmt.Errorf("ADMIN_CODE or ADMIN_CODE_HASH is required")
	}

	if cfg.Guard.Policy != "timed" && cfg.Guard.Policy != "permanent" {
		return nil, fmt.Errorf("LOCKOUT_POLICY must be \"timed\" or \"permanent\" (got %q)", cfg.Guard.Policy)
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		return parseList(originsStr)
	}

	// Development: the dashboard runs on a Vite or Next dev server
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
