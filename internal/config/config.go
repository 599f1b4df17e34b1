package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Archive  ArchiveConfig
	Profiles ProfilesConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Name        string
	Version     string
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// ArchiveConfig controls storage of computed report summaries
type ArchiveConfig struct {
	Enabled bool
	// RetentionDays of zero keeps archived runs forever
	RetentionDays int
	PurgeInterval time.Duration
}

// Retention returns the archive retention window, zero when unbounded.
func (a ArchiveConfig) Retention() time.Duration {
	return time.Duration(a.RetentionDays) * 24 * time.Hour
}

// ProfilesConfig holds site profile sources and the process-wide policy
// defaults applied to profiles that leave them unset.
type ProfilesConfig struct {
	File                       string
	DefaultProfile             string
	DefaultTotalEmployees      string
	DefaultExcludedUsers       []string
	DefaultLowRequirementUsers []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "10"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbMinConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "1"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
		MinConns: int32(dbMinConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:        getEnv("APP_NAME", "attendance-analyzer"),
		Version:     getEnv("APP_VERSION", "dev"),
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Archive configuration
	archiveEnabled, err := strconv.ParseBool(getEnv("ARCHIVE_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_ENABLED: %w", err)
	}
	retentionDays, err := strconv.Atoi(getEnv("ARCHIVE_RETENTION_DAYS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_RETENTION_DAYS: %w", err)
	}
	purgeInterval, err := time.ParseDuration(getEnv("ARCHIVE_PURGE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_PURGE_INTERVAL: %w", err)
	}
	config.Archive = ArchiveConfig{
		Enabled:       archiveEnabled,
		RetentionDays: retentionDays,
		PurgeInterval: purgeInterval,
	}

	// Site profile configuration
	config.Profiles = ProfilesConfig{
		File:                       getEnv("PROFILES_FILE", ""),
		DefaultProfile:             getEnv("DEFAULT_PROFILE", ""),
		DefaultTotalEmployees:      getEnv("DEFAULT_TOTAL_EMPLOYEES", ""),
		DefaultExcludedUsers:       getEnvSlice("DEFAULT_EXCLUDED_USERS"),
		DefaultLowRequirementUsers: getEnvSlice("DEFAULT_LOW_REQUIREMENT_USERS"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if c.Archive.Enabled {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when ARCHIVE_ENABLED is set")
		}
		if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max > 0")
		}
		if c.Archive.RetentionDays < 0 {
			return fmt.Errorf("ARCHIVE_RETENTION_DAYS must not be negative")
		}
		if c.Archive.RetentionDays > 0 && c.Archive.PurgeInterval <= 0 {
			return fmt.Errorf("ARCHIVE_PURGE_INTERVAL must be positive when retention is set")
		}
	}
	if v := strings.TrimSpace(c.Profiles.DefaultTotalEmployees); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			return fmt.Errorf("DEFAULT_TOTAL_EMPLOYEES must be a positive integer")
		}
	}
	return nil
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
