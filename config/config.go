package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment `mapstructure:"-"`

	// Server configuration
	ServerPort  string   `mapstructure:"server_port"`
	ServerHost  string   `mapstructure:"server_host"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Database configuration
	DBDriver   string `mapstructure:"db_driver"`
	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_ssl_mode"`
	SQLitePath string `mapstructure:"sqlite_path"`

	// Redis configuration
	RedisEnabled  bool   `mapstructure:"redis_enabled"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisURL      string `mapstructure:"redis_url"`

	// Image storage (S3 or an S3-compatible endpoint)
	S3Bucket        string `mapstructure:"s3_bucket_name"`
	S3Region        string `mapstructure:"aws_region"`
	S3Endpoint      string `mapstructure:"s3_endpoint"`
	S3PublicBaseURL string `mapstructure:"s3_public_base_url"`
	S3AccessKey     string `mapstructure:"s3_access_key"`
	S3SecretKey     string `mapstructure:"s3_secret_key"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Authoring
	MatchPolicy          string `mapstructure:"match_policy"`
	OverAllocationPolicy string `mapstructure:"over_allocation_policy"`
	DefaultServings      int    `mapstructure:"default_servings"`
	DefaultRecipeImage   string `mapstructure:"default_recipe_image"`
	SaveRateLimit        int    `mapstructure:"save_rate_limit"`
	MigrationsDir        string `mapstructure:"migrations_dir"`

	// Drafts untouched for this long are discarded
	DraftIdleTimeout time.Duration `mapstructure:"draft_idle_timeout"`
}

// secretKeys are read from SECRETS_DIR when the environment leaves them
// empty.
var secretKeys = []string{
	"db_user",
	"db_password",
	"redis_password",
	"redis_url",
	"s3_access_key",
	"s3_secret_key",
}

// LoadConfig creates a new Config instance with values from the
// environment, an optional .env file and Docker secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment wins over it.
	_ = godotenv.Load()

	env := GetEnvironment()
	v := viper.New()
	setDefaults(v, env)
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = env
	cfg.CORSOrigins = splitList(v.GetString("cors_origins"))

	// CI hands secrets over as environment variables only
	if env != CI {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("cors_origins", "*")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "culinario")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "culinario.db")

	v.SetDefault("redis_enabled", true)
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_url", "")

	v.SetDefault("s3_bucket_name", "")
	v.SetDefault("aws_region", "eu-central-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_public_base_url", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")

	v.SetDefault("log_level", "info")
	if env == Production {
		v.SetDefault("log_format", "json")
	} else {
		v.SetDefault("log_format", "console")
	}

	v.SetDefault("match_policy", "longest")
	v.SetDefault("over_allocation_policy", "reject")
	v.SetDefault("default_servings", 2)
	v.SetDefault("default_recipe_image", "")
	v.SetDefault("save_rate_limit", 30)
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("draft_idle_timeout", "24h")
}

// loadSecrets fills sensitive values that are still empty from Docker
// secrets.
func loadSecrets(cfg *Config) {
	targets := map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
		"s3_access_key":  &cfg.S3AccessKey,
		"s3_secret_key":  &cfg.S3SecretKey,
	}
	for _, name := range secretKeys {
		if *targets[name] != "" {
			continue
		}
		*targets[name] = readSecret(name)
	}
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// PostgresDSN builds the connection string for lib/pq and the gorm
// postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// StorageEnabled reports whether image uploads are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
