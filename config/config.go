package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "insecure-development-secret"

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration
	LogLevel        string

	// Database configuration
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	DBMaxConns   int
	SQLitePath   string
	AutoMigrate  bool
	DBLogQueries bool

	// Redis configuration. Rate limiting is disabled when neither RedisURL
	// nor RedisHost is set.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Media storage
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	MaxUploadBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PublicURL    string

	// Rate limits, requests per RateLimitWindow
	RateLimitWindow   time.Duration
	RecipeWriteLimit  int
	ImageUploadLimit  int
	CORSAllowOrigins  []string
	MetricsEnabled    bool
	TrustedProxyCIDRs []string
}

// LoadConfig reads an optional .env file, then environment variables, then
// Docker secrets for anything sensitive that is still unset.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	cfg.Environment = GetEnvironment()

	for key, dst := range map[string]*string{
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_password": &cfg.RedisPassword,
		"db_user":        &cfg.DBUser,
	} {
		if *dst == "" {
			*dst = readSecret(key)
		}
	}

	if cfg.JWTSecret == "" && !cfg.Environment.IsStrict() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8000")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("log_level", "info")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "recipes")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_max_conns", 25)
	v.SetDefault("sqlite_path", "recipes.db")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("db_log_queries", false)

	v.SetDefault("redis_url", "")
	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", "24h")

	v.SetDefault("storage_backend", "local")
	v.SetDefault("media_root", "media")
	v.SetDefault("media_url", "/media")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_public_url", "")

	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("recipe_write_limit", 60)
	v.SetDefault("image_upload_limit", 10)
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("trusted_proxies", "")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:      v.GetString("server_port"),
		ServerHost:      v.GetString("server_host"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		LogLevel:        v.GetString("log_level"),

		DBDriver:     strings.ToLower(v.GetString("db_driver")),
		DBHost:       v.GetString("db_host"),
		DBPort:       v.GetString("db_port"),
		DBUser:       v.GetString("db_user"),
		DBPassword:   v.GetString("db_password"),
		DBName:       v.GetString("db_name"),
		DBSSLMode:    v.GetString("db_ssl_mode"),
		DBMaxConns:   v.GetInt("db_max_conns"),
		SQLitePath:   v.GetString("sqlite_path"),
		AutoMigrate:  v.GetBool("auto_migrate"),
		DBLogQueries: v.GetBool("db_log_queries"),

		RedisURL:      v.GetString("redis_url"),
		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		JWTSecret: v.GetString("jwt_secret"),
		JWTTTL:    v.GetDuration("jwt_ttl"),

		StorageBackend: strings.ToLower(v.GetString("storage_backend")),
		MediaRoot:      v.GetString("media_root"),
		MediaURL:       strings.TrimRight(v.GetString("media_url"), "/"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		S3Bucket:       v.GetString("s3_bucket"),
		S3Region:       v.GetString("s3_region"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		S3PublicURL:    strings.TrimRight(v.GetString("s3_public_url"), "/"),

		RateLimitWindow:   v.GetDuration("rate_limit_window"),
		RecipeWriteLimit:  v.GetInt("recipe_write_limit"),
		ImageUploadLimit:  v.GetInt("image_upload_limit"),
		CORSAllowOrigins:  splitList(v.GetString("cors_allow_origins")),
		MetricsEnabled:    v.GetBool("metrics_enabled"),
		TrustedProxyCIDRs: splitList(v.GetString("trusted_proxies")),
	}
}

// DSN returns the lib/pq connection string for the postgres driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether a Redis endpoint has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
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

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
