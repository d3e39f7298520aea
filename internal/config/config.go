package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backings accepted in store.type
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Platform  PlatformConfig  `yaml:"platform"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Keys      KeysConfig      `yaml:"keys"`
	Log       LogConfig       `yaml:"log"`
	Audit     AuditConfig     `yaml:"audit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// PlatformConfig contains group platform settings
type PlatformConfig struct {
	GroupID           int64   `yaml:"group_id"`
	SessionCookie     string  `yaml:"session_cookie"`
	UsersBaseURL      string  `yaml:"users_base_url"`
	GroupsBaseURL     string  `yaml:"groups_base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// StoreConfig selects the invite code backing
type StoreConfig struct {
	Type      string `yaml:"type"` // "file", "postgres", "sqlite" or "redis"
	Path      string `yaml:"path"` // file and sqlite backings
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"` // redis backing
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains front-end token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// KeysConfig contains invite code generation settings
type KeysConfig struct {
	Length   int `yaml:"length"`
	MaxBatch int `yaml:"max_batch"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// AuditConfig names where the front end should route audit records
type AuditConfig struct {
	ChannelID string `yaml:"channel_id"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SessionCheck      string `yaml:"session_check"`
	ActiveCodesReport string `yaml:"active_codes_report"`
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first when present; its values never override variables
// already set in the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applies environment overrides
// and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Platform. Variable names match existing bot deployments.
	if val := os.Getenv("ROBLOX_SECURITY"); val != "" {
		c.Platform.SessionCookie = val
	}
	if val := os.Getenv("ROBLOX_GROUP_ID"); val != "" {
		fmt.Sscanf(val, "%d", &c.Platform.GroupID)
	}

	// Audit
	if val := os.Getenv("AUDIT_CHANNEL_ID"); val != "" {
		c.Audit.ChannelID = val
	}

	// Store
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}
	if val := os.Getenv("STORE_PATH"); val != "" {
		c.Store.Path = val
	}
	if val := os.Getenv("REDIS_URL"); val != "" {
		c.Store.RedisURL = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	// Platform validation
	if c.Platform.GroupID <= 0 {
		return fmt.Errorf("platform group id is required")
	}
	if c.Platform.SessionCookie == "" {
		return fmt.Errorf("platform session cookie is required")
	}
	if c.Platform.UsersBaseURL == "" {
		c.Platform.UsersBaseURL = "https://users.roblox.com"
	}
	if c.Platform.GroupsBaseURL == "" {
		c.Platform.GroupsBaseURL = "https://groups.roblox.com"
	}
	if c.Platform.TimeoutSeconds == 0 {
		c.Platform.TimeoutSeconds = 10
	}
	if c.Platform.RequestsPerSecond == 0 {
		c.Platform.RequestsPerSecond = 5
	}
	if c.Platform.Burst == 0 {
		c.Platform.Burst = 5
	}

	// Store validation
	c.Store.Type = strings.ToLower(strings.TrimSpace(c.Store.Type))
	if c.Store.Type == "" {
		c.Store.Type = StoreFile
	}
	switch c.Store.Type {
	case StoreFile:
		if c.Store.Path == "" {
			c.Store.Path = "keys.json"
		}
	case StoreSQLite:
		if c.Store.Path == "" {
			c.Store.Path = "keys.db"
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis url is required for redis store")
		}
		if c.Store.KeyPrefix == "" {
			c.Store.KeyPrefix = "groupkeeper"
		}
	case StorePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported store type: %q", c.Store.Type)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Keys defaults
	if c.Keys.Length == 0 {
		c.Keys.Length = 16
	}
	if c.Keys.Length < 8 || c.Keys.Length > 64 {
		return fmt.Errorf("key length must be between 8 and 64: %d", c.Keys.Length)
	}
	if c.Keys.MaxBatch == 0 {
		c.Keys.MaxBatch = 100
	}

	// Scheduler defaults
	if c.Scheduler.SessionCheck == "" {
		c.Scheduler.SessionCheck = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ActiveCodesReport == "" {
		c.Scheduler.ActiveCodesReport = "0 0 * * * *" // hourly
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PlatformTimeout returns the per-request platform timeout
func (c *Config) PlatformTimeout() time.Duration {
	return time.Duration(c.Platform.TimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of front-end access tokens
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

// ShutdownTimeout returns how long the server waits for in-flight requests
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
