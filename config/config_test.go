package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points secrets at an empty directory and clears variables the
// host may have set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	for _, k := range []string{
		"DB_DRIVER", "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_URL", "REDIS_PASSWORD", "S3_BUCKET_NAME", "S3_ENDPOINT",
		"S3_ACCESS_KEY", "S3_SECRET_KEY", "MATCH_POLICY", "OVER_ALLOCATION_POLICY",
		"DEFAULT_SERVINGS", "SERVER_PORT", "CORS_ORIGINS", "DRAFT_IDLE_TIMEOUT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "culinario")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("OVER_ALLOCATION_POLICY", "clamp")
	t.Setenv("CORS_ORIGINS", "http://localhost:8081, https://culinario.app")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "culinario", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "clamp", cfg.OverAllocationPolicy)
	assert.Equal(t, "longest", cfg.MatchPolicy)
	assert.Equal(t, 2, cfg.DefaultServings)
	assert.Equal(t, 24*time.Hour, cfg.DraftIdleTimeout)
	assert.Equal(t, []string{"http://localhost:8081", "https://culinario.app"}, cfg.CORSOrigins)
	assert.Equal(t, "host=db port=5432 user=culinario password=secret dbname=recipes sslmode=disable", cfg.PostgresDSN())
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_user"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte(" pw "), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.DBUser)
	assert.Equal(t, "pw", cfg.DBPassword)
}

func TestLoadConfigSQLite(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "culinario.db", cfg.SQLitePath)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:                  Development,
			ServerPort:           "8080",
			DBDriver:             "postgres",
			DBHost:               "localhost",
			DBUser:               "u",
			DBName:               "n",
			RedisHost:            "localhost",
			RedisEnabled:         true,
			MatchPolicy:          "longest",
			OverAllocationPolicy: "reject",
			DefaultServings:      2,
		}
	}
	require.NoError(t, ValidateConfig(base()))

	cfg := base()
	cfg.DBDriver = "mysql"
	cfg.MatchPolicy = "random"
	cfg.DefaultServings = 0
	err := ValidateConfig(cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"DB_DRIVER", "MATCH_POLICY", "DEFAULT_SERVINGS"}, fields)

	cfg = base()
	cfg.Env = Production
	assert.ErrorContains(t, ValidateConfig(cfg), "DB_PASSWORD")

	cfg = base()
	cfg.S3AccessKey = "key"
	assert.ErrorContains(t, ValidateConfig(cfg), "S3_ACCESS_KEY")
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("ENV", "production")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
	assert.True(t, GetEnvironment().Development())
}

func TestNewS3Config(t *testing.T) {
	_, err := NewS3Config(context.Background(), &Config{})
	assert.Error(t, err)

	s3cfg, err := NewS3Config(context.Background(), &Config{
		S3Bucket:    "recipes",
		S3Region:    "auto",
		S3Endpoint:  "https://account.r2.cloudflarestorage.com",
		S3AccessKey: "key",
		S3SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://account.r2.cloudflarestorage.com/recipes/recipe-images/a.jpg", s3cfg.ObjectURL("recipe-images/a.jpg"))

	s3cfg, err = NewS3Config(context.Background(), &Config{
		S3Bucket:        "recipes",
		S3Region:        "eu-central-1",
		S3PublicBaseURL: "https://img.culinario.app/",
		S3AccessKey:     "key",
		S3SecretKey:     "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.culinario.app/x.png", s3cfg.ObjectURL("/x.png"))
}
