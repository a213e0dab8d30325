package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	OAuth2Google OAuth2GoogleConfig
	Leave        LeaveConfig
	OTP          OTPConfig
	Telemetry    TelemetryConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int      `env:"APP_PORT" envDefault:"8080"`
	Env         string   `env:"APP_ENV" envDefault:"development"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	Timezone    string   `env:"APP_TIMEZONE" envDefault:"UTC"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"hrms"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string `env:"JWT_SECRET_KEY"`
	AccessExpiration  string `env:"JWT_ACCESS_EXPIRATION_TIME" envDefault:"1h"`
	RefreshExpiration string `env:"JWT_REFRESH_EXPIRATION_TIME" envDefault:"168h"`
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@hrms.local"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"HRMS"`

	// Timeout bounds each delivery attempt, dial included.
	Timeout time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
}

type StorageConfig struct {
	Type     string `env:"STORAGE_TYPE" envDefault:"local"`
	BasePath string `env:"STORAGE_BASE_PATH" envDefault:"./uploads"`
	BaseURL  string `env:"STORAGE_BASE_URL" envDefault:"http://localhost:8080/uploads"`
}

type OAuth2GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_REDIRECT_URL"`
	Scopes       []string `env:"GOOGLE_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email"`
}

// Enabled reports whether Google sign-in is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// LeaveConfig holds the balance granted to newly created employees.
type LeaveConfig struct {
	DefaultPaidDays int `env:"LEAVE_DEFAULT_PAID_DAYS" envDefault:"20"`
	DefaultSickDays int `env:"LEAVE_DEFAULT_SICK_DAYS" envDefault:"10"`
}

type OTPConfig struct {
	Issuer string        `env:"OTP_ISSUER" envDefault:"HRMS"`
	TTL    time.Duration `env:"OTP_TTL" envDefault:"10m"`
}

type TelemetryConfig struct {
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"hrms-backend"`
	Endpoint    string `env:"OTEL_EXPORTER_ENDPOINT"`
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return errors.New("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Leave.DefaultPaidDays < 0 || c.Leave.DefaultSickDays < 0 {
		return errors.New("default leave balances must not be negative")
	}
	if c.OTP.TTL < time.Minute {
		return errors.New("OTP_TTL must be at least 1m")
	}
	return nil
}

// Location returns the time zone that defines the attendance calendar day.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
