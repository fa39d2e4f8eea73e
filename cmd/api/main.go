package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/culinario/backend/config"
	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/catalog"
	"github.com/culinario/backend/internal/database"
	"github.com/culinario/backend/internal/draft"
	"github.com/culinario/backend/internal/logger"
	"github.com/culinario/backend/internal/metrics"
	"github.com/culinario/backend/internal/middleware"
	"github.com/culinario/backend/internal/router"
	"github.com/culinario/backend/internal/server"
	"github.com/culinario/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Env.Development(),
	})
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	zl.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	// Initialize database
	db, err := database.Open(cfg, zl)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	if err := database.RunMigrations(db, cfg.MigrationsDir, zl); err != nil {
		return err
	}

	m := metrics.New()
	opts := []app.Option{app.WithMetrics(m)}
	routerOpts := router.Options{CORSOrigins: cfg.CORSOrigins, DB: sqlDB}

	// Redis is optional: without it placeholders live in memory and saves
	// are not rate limited.
	if cfg.RedisEnabled {
		rdb, err := database.NewRedisClient(cfg, zl)
		if err != nil {
			zl.Warn("redis unavailable, continuing without it", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			opts = append(opts, app.WithPlaceholderStore(catalog.NewRedisPlaceholderStore(rdb, catalog.DefaultPlaceholderKey)))
			routerOpts.SaveLimiter = middleware.NewSaveRateLimiter(rdb, cfg.SaveRateLimit, zl).Middleware()
		}
	}

	if cfg.StorageEnabled() {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, app.WithUploader(service.NewImageService(s3Config, zl, m)))
		zl.Info("image uploads enabled", zap.String("bucket", s3Config.BucketName))
	}

	state := app.New(cfg, service.NewRecipeService(db, zl), zl, opts...)
	drafts := draft.NewManager(state)
	if cfg.DraftIdleTimeout > 0 {
		go drafts.RunPruner(ctx, pruneInterval(cfg.DraftIdleTimeout), cfg.DraftIdleTimeout)
	}

	handler := router.SetupRouter(state, drafts, routerOpts)
	srv := server.New(cfg, handler, zl)
	zl.Info("starting server",
		zap.String("addr", cfg.Addr()),
		zap.String("env", string(cfg.Env)),
		zap.String("match_policy", state.Resolver.Policy().String()))
	return srv.Run(ctx)
}

// pruneInterval checks for idle drafts a few times per timeout.
func pruneInterval(timeout time.Duration) time.Duration {
	interval := timeout / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	if interval > time.Hour {
		interval = time.Hour
	}
	return interval
}
