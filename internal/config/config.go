package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"

	defaultMaxUploadBytes = 10 << 20
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	AWS       AWSConfig       `yaml:"aws"`
	JWT       JWTConfig       `yaml:"jwt"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	APNs      APNsConfig      `yaml:"apns"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	CORSOrigins []string `yaml:"cors_origins"`
	TrustProxy  bool     `yaml:"trust_proxy"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// StorageConfig selects where uploaded image files are kept
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	LocalDir string `yaml:"local_dir"`
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret   string `yaml:"secret"`
	TTLHours int    `yaml:"ttl_hours"`
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
}

// RedisConfig enables cross-instance notification fan-out when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// APNsConfig enables iOS push delivery when KeyPath is set
type APNsConfig struct {
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// RateLimitConfig limits unauthenticated auth endpoints per client IP
type RateLimitConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute"`
	AuthBurst     int `yaml:"auth_burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file, then applies .env and environment overrides.
// A missing file is not an error; the environment alone may configure the server.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.TrustProxy = getEnvBool("TRUST_PROXY", c.Server.TrustProxy)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = strings.Split(origins, ",")
	}

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.LocalDir = getEnv("STORAGE_LOCAL_DIR", c.Storage.LocalDir)

	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)
	c.AWS.S3Bucket = getEnv("AWS_S3_BUCKET", c.AWS.S3Bucket)
	c.AWS.AccessKey = getEnv("AWS_ACCESS_KEY_ID", c.AWS.AccessKey)
	c.AWS.SecretKey = getEnv("AWS_SECRET_ACCESS_KEY", c.AWS.SecretKey)
	c.AWS.Endpoint = getEnv("AWS_ENDPOINT", c.AWS.Endpoint)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.TTLHours = getEnvInt("JWT_TTL_HOURS", c.JWT.TTLHours)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.APNs.KeyPath = getEnv("APNS_KEY_PATH", c.APNs.KeyPath)
	c.APNs.KeyID = getEnv("APNS_KEY_ID", c.APNs.KeyID)
	c.APNs.TeamID = getEnv("APNS_TEAM_ID", c.APNs.TeamID)
	c.APNs.Topic = getEnv("APNS_TOPIC", c.APNs.Topic)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageLocal
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "uploads"
	}
	if c.JWT.TTLHours == 0 {
		c.JWT.TTLHours = 24 * 7
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "session"
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "notifications"
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = defaultMaxUploadBytes
	}
	if c.RateLimit.AuthPerMinute == 0 {
		c.RateLimit.AuthPerMinute = 20
	}
	if c.RateLimit.AuthBurst == 0 {
		c.RateLimit.AuthBurst = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration can start a server
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters")
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.AWS.S3Bucket == "" || c.AWS.Region == "" {
			return fmt.Errorf("aws region and s3_bucket are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.APNs.KeyPath != "" && (c.APNs.KeyID == "" || c.APNs.TeamID == "" || c.APNs.Topic == "") {
		return fmt.Errorf("apns key_id, team_id and topic are required when key_path is set")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrateURL returns the database URL understood by the golang-migrate pgx/v5 driver
func (c *DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// TTL returns the session token lifetime
func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
