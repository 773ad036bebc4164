package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	API       APIConfig
	Auth      AuthConfig
	Audit     AuditConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	DeletesPerMin   int           `env:"RATE_LIMIT_DELETES_PER_MINUTE" envDefault:"30"`
}

type DatabaseConfig struct {
	Host              string        `env:"DB_HOST" envDefault:"localhost"`
	Port              int           `env:"DB_PORT" envDefault:"5432"`
	User              string        `env:"DB_USER" envDefault:"postgres"`
	Password          string        `env:"DB_PASSWORD"`
	Name              string        `env:"DB_NAME" envDefault:"classdesk"`
	SSLMode           string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns          int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns          int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"5m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"1m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// APIConfig points at the platform REST API the console reads from
type APIConfig struct {
	BaseURL       string        `env:"API_BASE_URL"`
	Timeout       time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	SessionCookie string        `env:"API_SESSION_COOKIE" envDefault:"connect.sid"`
}

type AuthConfig struct {
	ConfirmationSecret string        `env:"CONFIRMATION_SECRET"`
	ConfirmationTTL    time.Duration `env:"CONFIRMATION_TTL" envDefault:"5m"`
	LoginURL           string        `env:"LOGIN_URL" envDefault:"/login"`
	CookieDomain       string        `env:"COOKIE_DOMAIN"`
	CookieSecure       bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite     string        `env:"COOKIE_SAMESITE" envDefault:"lax"`
}

type AuditConfig struct {
	RetentionDays   int           `env:"AUDIT_RETENTION_DAYS" envDefault:"90"`
	CleanupInterval time.Duration `env:"AUDIT_CLEANUP_INTERVAL" envDefault:"1h"`
}

type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"classdesk"`
}

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL (got %q)", c.API.BaseURL))
	}
	if err := validateSecret(c.Auth.ConfirmationSecret, c.Server.Env); err != nil {
		errs = append(errs, err)
	}
	if c.Audit.RetentionDays < 1 {
		errs = append(errs, errors.New("AUDIT_RETENTION_DAYS must be positive"))
	}
	if c.Server.DeletesPerMin < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_DELETES_PER_MINUTE must be positive"))
	}

	return errors.Join(errs...)
}

// validateSecret enforces minimum strength for the confirmation signing secret
func validateSecret(secret, environment string) error {
	if secret == "" {
		return errors.New("CONFIRMATION_SECRET is required")
	}

	minLength := 16
	if environment == "production" {
		minLength = 32 // 256 bits
	}
	if len(secret) < minLength {
		return fmt.Errorf("CONFIRMATION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, environment, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Repeat(weak, len(lower)/max(len(weak), 1)) == lower {
			return errors.New("CONFIRMATION_SECRET cannot be a common weak value")
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

// IsProduction reports whether the server runs in production
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}
