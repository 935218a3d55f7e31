package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	Username     string
	Password     string
	DBName       string
	SSLMode      string
	TestDBName   string // Separate database for testing
	Path         string // SQLite file, or a file: URI
	MaxOpenConns int
}

// CacheConfig holds the book cache configuration. An empty RedisURL
// disables caching.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level string
}

// GetDSN returns the database connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == DriverSQLite {
		sep := "?"
		if strings.Contains(c.Path, "?") {
			sep = "&"
		}
		return fmt.Sprintf("file:%s%s_busy_timeout=5000&_foreign_keys=1", c.Path, sep)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// LoadConfig loads the configuration from an optional .env file, an
// optional config.yml and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("DB_DRIVER"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			Username:     v.GetString("DB_USERNAME"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			TestDBName:   v.GetString("TEST_DB_NAME"),
			Path:         v.GetString("DB_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("REDIS_URL"),
			TTL:      v.GetDuration("CACHE_TTL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "bookexchange")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("TEST_DB_NAME", "bookexchange_test")
	v.SetDefault("DB_PATH", "bookexchange.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("LOG_LEVEL", "info")
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d is out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DBName == "" {
			return errors.New("DB_NAME is required for postgres")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DB_PATH is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Cache.RedisURL != "" && c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive when REDIS_URL is set")
	}
	return nil
}
