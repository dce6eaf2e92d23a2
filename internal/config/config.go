// Package config provides configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

const defaultJWTSecret = "devconnector-insecure-development-secret"

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Token settings
	JWTSecret       string `mapstructure:"jwtsecret"`
	TokenTTLSeconds int    `mapstructure:"tokenttlseconds"`

	// GitHub proxy settings
	GitHubClientID     string `mapstructure:"githubclientid"`
	GitHubClientSecret string `mapstructure:"githubsecret"`
	GitHubAPIURL       string `mapstructure:"githubapiurl"`

	// File paths
	DatabasePath          string `mapstructure:"storagepath"`
	DatabaseName          string `mapstructure:"-"` // Derived from other settings
	PublicDirectory       string `mapstructure:"publicdir"`
	PublicAssetsUrlPrefix string `mapstructure:"publicassetsurlprefix"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		loaded, err := Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	})
	return cfg
}

// Load reads configuration from defaults, an optional devconnector.{yaml,json} file
// in the working directory and DEVCONNECTOR_* environment variables, in increasing
// order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("appname", "devconnector")
	v.SetDefault("appport", "5000")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelDebug))
	v.SetDefault("jwtsecret", defaultJWTSecret)
	v.SetDefault("tokenttlseconds", 3600)
	v.SetDefault("githubapiurl", "https://api.github.com")
	v.SetDefault("storagepath", "storage")
	v.SetDefault("publicdir", "web/dist")
	v.SetDefault("publicassetsurlprefix", "/")
	v.SetDefault("logsdir", "logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("dbtype", SQLiteDatabase)
	v.SetDefault("dbmaxopenconns", 0)
	v.SetDefault("dbmaxidleconns", 0)

	v.BindEnv("appname", "DEVCONNECTOR_APP_NAME")
	v.BindEnv("appport", "DEVCONNECTOR_PORT", "PORT")
	v.BindEnv("environment", "DEVCONNECTOR_ENV")
	v.BindEnv("loglevel", "DEVCONNECTOR_LOG_LEVEL")
	v.BindEnv("jwtsecret", "DEVCONNECTOR_JWT_SECRET")
	v.BindEnv("tokenttlseconds", "DEVCONNECTOR_TOKEN_TTL_SECONDS")
	v.BindEnv("githubclientid", "DEVCONNECTOR_GITHUB_CLIENT_ID")
	v.BindEnv("githubsecret", "DEVCONNECTOR_GITHUB_SECRET")
	v.BindEnv("githubapiurl", "DEVCONNECTOR_GITHUB_API_URL")
	v.BindEnv("storagepath", "DEVCONNECTOR_STORAGE_PATH")
	v.BindEnv("publicdir", "DEVCONNECTOR_PUBLIC_DIR")
	v.BindEnv("publicassetsurlprefix", "DEVCONNECTOR_PUBLIC_ASSETS_URL_PREFIX")
	v.BindEnv("logsdir", "DEVCONNECTOR_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "DEVCONNECTOR_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "DEVCONNECTOR_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "DEVCONNECTOR_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("dbtype", "DEVCONNECTOR_DB_TYPE")
	v.BindEnv("dbmaxopenconns", "DEVCONNECTOR_DB_MAX_OPEN_CONNS")
	v.BindEnv("dbmaxidleconns", "DEVCONNECTOR_DB_MAX_IDLE_CONNS")

	v.SetConfigName("devconnector")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.DatabaseName = c.GetDatabasePath()
	return c, nil
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("production requires a unique DEVCONNECTOR_JWT_SECRET (cannot use default)")
	}

	if c.TokenTTLSeconds <= 0 {
		return fmt.Errorf("invalid token ttl: %d", c.TokenTTLSeconds)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// TokenTTL returns how long issued bearer tokens stay valid.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
func (c *Config) GetPublicDirectory() string {
	return c.PublicDirectory
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return c.PublicAssetsUrlPrefix
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the signing key (implements cartridge.FactoryConfig interface).
// The API is stateless, so the only consumer besides cartridge is the token service.
func (c *Config) GetSessionSecret() string {
	return c.JWTSecret
}

// GetSessionTimeout returns the token lifetime in seconds.
func (c *Config) GetSessionTimeout() int {
	return c.TokenTTLSeconds
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1
// - Development/Production: 10
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
