package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisPassword string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Pagination
	PageSize    int
	MaxPageSize int

	// Media storage
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	S3Bucket       string
	AWSRegion      string

	CORSOrigins []string
	LogLevel    string
}

const defaultJWTSecret = "insecure-dev-secret"

// secrets that may be provided as Docker secrets and override environment values
var secretFiles = map[string]func(*Config, string){
	"db_password":    func(c *Config, v string) { c.DBPassword = v },
	"jwt_secret":     func(c *Config, v string) { c.JWTSecret = v },
	"redis_password": func(c *Config, v string) { c.RedisPassword = v },
	"db_user":        func(c *Config, v string) { c.DBUser = v },
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:            env,
		ServerPort:     v.GetString("SERVER_PORT"),
		ServerHost:     v.GetString("SERVER_HOST"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSL_MODE"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		RedisURL:       v.GetString("REDIS_URL"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		PageSize:       v.GetInt("PAGE_SIZE"),
		MaxPageSize:    v.GetInt("MAX_PAGE_SIZE"),
		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		MediaRoot:      v.GetString("MEDIA_ROOT"),
		MediaURL:       v.GetString("MEDIA_URL"),
		S3Bucket:       v.GetString("S3_BUCKET_NAME"),
		AWSRegion:      v.GetString("AWS_REGION"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}

	// Docker secrets take precedence outside CI
	if env != CI {
		if err := loadSecrets(cfg, env == Production); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "foodgram")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "foodgram.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("PAGE_SIZE", 6)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("S3_BUCKET_NAME", "foodgram-recipe-images")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
}

// loadSecrets overlays Docker secrets. In production a missing secrets
// directory is an error; elsewhere secrets are optional.
func loadSecrets(cfg *Config, required bool) error {
	dir := secretsDir()
	if _, err := os.Stat(dir); err != nil {
		if required {
			return fmt.Errorf("secrets directory %s: %w", dir, err)
		}
		return nil
	}
	for name, apply := range secretFiles {
		if value := readSecret(name); value != "" {
			apply(cfg, value)
		}
	}
	return nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	if data, err := os.ReadFile(filepath.Join(secretsDir(), name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
