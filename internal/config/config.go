package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultAdminUsername and DefaultAdminPassword are the built-in
// administrator pair. They match what the care team was issued and must be
// overridden outside development.
const (
	DefaultAdminUsername = "VILADUTRA"
	DefaultAdminPassword = "Saude2025"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DataDir        string   `mapstructure:"DATA_DIR"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AdminUsername  string   `mapstructure:"ADMIN_USERNAME"`
	AdminPassword  string   `mapstructure:"ADMIN_PASSWORD"`
	SessionKey     string   `mapstructure:"SESSION_SIGNING_KEY"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("ADMIN_USERNAME", DefaultAdminUsername)
	v.SetDefault("ADMIN_PASSWORD", DefaultAdminPassword)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATA_DIR")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("ADMIN_USERNAME")
	v.BindEnv("ADMIN_PASSWORD")
	v.BindEnv("SESSION_SIGNING_KEY")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesPostgres reports whether the Postgres document store backend is
// selected. Without DATABASE_URL the server persists to DATA_DIR files.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration is safe to run. Production refuses
// to start on the built-in administrator password or without a session
// signing key; development generates an ephemeral key when none is set.
func (c *Config) Validate() error {
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")
	}
	if c.IsProduction() {
		if c.AdminPassword == DefaultAdminPassword {
			return fmt.Errorf("ADMIN_PASSWORD must be changed from the built-in default in production")
		}
		if c.SessionKey == "" {
			return fmt.Errorf("SESSION_SIGNING_KEY is required in production")
		}
	}
	if c.SessionKey != "" && len(c.SessionKey) < 32 {
		return fmt.Errorf("SESSION_SIGNING_KEY must be at least 32 characters, got %d", len(c.SessionKey))
	}
	return nil
}
