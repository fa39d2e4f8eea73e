package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		add("SERVER_PORT", "must be a number")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
		if cfg.Env == Production && cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required in production")
		}
	case "sqlite":
		if cfg.Env == Production {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q, use postgres or sqlite", cfg.DBDriver))
	}

	if cfg.RedisEnabled && cfg.RedisURL == "" && cfg.RedisHost == "" {
		add("REDIS_HOST", "is required when redis is enabled")
	}

	if cfg.S3Endpoint != "" && cfg.S3Bucket == "" {
		add("S3_BUCKET_NAME", "is required when S3_ENDPOINT is set")
	}
	if (cfg.S3AccessKey == "") != (cfg.S3SecretKey == "") {
		add("S3_ACCESS_KEY", "access and secret key must be set together")
	}

	switch strings.ToLower(cfg.MatchPolicy) {
	case "longest", "first":
	default:
		add("MATCH_POLICY", "must be longest or first")
	}
	switch strings.ToLower(cfg.OverAllocationPolicy) {
	case "reject", "clamp":
	default:
		add("OVER_ALLOCATION_POLICY", "must be reject or clamp")
	}
	if cfg.DefaultServings < 1 {
		add("DEFAULT_SERVINGS", "must be at least 1")
	}
	if cfg.SaveRateLimit < 0 {
		add("SAVE_RATE_LIMIT", "must not be negative")
	}
	if cfg.DraftIdleTimeout < 0 {
		add("DRAFT_IDLE_TIMEOUT", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
