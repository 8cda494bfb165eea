package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"fiscal-coupon/internal/charset"

	"github.com/joho/godotenv"
)

// Config is the configuration of the coupon API: its HTTP listener, the
// journal database, the device session and the issue recovery policy.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Device   DeviceConfig
	Recovery RecoveryConfig
}

// ServerConfig is the HTTP listener of the API.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig points at the PostgreSQL journal of coupons and till
// movements.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig selects the level and output of the zerolog logger.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the API key every route except /health requires.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for capability profiles.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // key prefix of the profiles in the bucket, e.g. "profiles/"
}

// DeviceConfig selects and tunes the fiscal device behind the service.
type DeviceConfig struct {
	Model        string
	Profile      string // capability profile path or S3 key; empty uses the built-in profile
	Charset      string // overrides the profile charset when set
	SerialNumber string
	PendingReadX bool // start the virtual device with a pending read X
}

// RecoveryConfig bounds the recovery loop of the one-shot issue flow.
type RecoveryConfig struct {
	MaxAttempts int
	AutoReduceZ bool // close the till automatically when the device demands a reduce Z
}

// Load loads configuration from an optional .env file and environment
// variables. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "fiscal_journal"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "profiles/"),
		},
		Device: DeviceConfig{
			Model:        getEnv("DEVICE_MODEL", ""),
			Profile:      getEnv("DEVICE_PROFILE", ""),
			Charset:      getEnv("DEVICE_CHARSET", ""),
			SerialNumber: getEnv("DEVICE_SERIAL_NUMBER", ""),
			PendingReadX: getEnvAsBool("DEVICE_PENDING_READ_X", false),
		},
		Recovery: RecoveryConfig{
			MaxAttempts: getEnvAsInt("RECOVERY_MAX_ATTEMPTS", 3),
			AutoReduceZ: getEnvAsBool("RECOVERY_AUTO_REDUCE_Z", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects a configuration the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Device.Charset != "" && !charset.Supported(c.Device.Charset) {
		return fmt.Errorf("unsupported device charset: %s", c.Device.Charset)
	}

	if c.Recovery.MaxAttempts < 0 {
		return fmt.Errorf("recovery max attempts cannot be negative: %d", c.Recovery.MaxAttempts)
	}

	return nil
}

// ConnectionString returns the URL of the journal database.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the host:port the API listens on.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
