package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/culinario/backend/config"
	"github.com/culinario/backend/internal/database"
	"github.com/culinario/backend/internal/logger"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.Env.Development()})
	defer func() { _ = zl.Sync() }()

	migrationsDir := cfg.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	db, err := database.New(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	m := database.NewMigrator(db.DB, migrationsDir, zl)

	if *rollback {
		name, err := m.Rollback(ctx)
		if errors.Is(err, database.ErrNoMigrations) {
			fmt.Println("No migrations to rollback")
			return
		}
		if err != nil {
			zl.Fatal("rollback failed", zap.Error(err))
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	applied, err := m.Up(ctx)
	for _, name := range applied {
		fmt.Printf("Successfully applied migration: %s\n", name)
	}
	if err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	if len(applied) == 0 {
		fmt.Println("Database is up to date.")
		return
	}
	fmt.Println("All migrations applied successfully.")
}
