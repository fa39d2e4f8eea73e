package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"go.uber.org/zap"

	"github.com/culinario/backend/config"
	"github.com/culinario/backend/internal/database"
	"github.com/culinario/backend/internal/logger"
	"github.com/culinario/backend/internal/service"
)

func main() {
	force := flag.Bool("force", false, "Insert demo recipes even if a recipe with the same name exists")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.Env.Development()})
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	store := service.NewRecipeService(db, zl)

	created := 0
	for i := range demoRecipes {
		recipe := demoRecipes[i]
		if !*force {
			exists, err := recipeExists(ctx, store, recipe.Name)
			if err != nil {
				zl.Fatal("failed to list recipes", zap.Error(err))
			}
			if exists {
				zl.Info("recipe already present, skipping", zap.String("name", recipe.Name))
				continue
			}
		}

		id, err := store.Create(ctx, &recipe)
		if err != nil {
			zl.Error("failed to save recipe", zap.String("name", recipe.Name), zap.Error(err))
			continue
		}
		created++
		zl.Info("recipe created", zap.String("name", recipe.Name), zap.String("id", id.String()))
	}

	zl.Info("seeding finished", zap.Int("created", created), zap.Int("total", len(demoRecipes)))
}

func recipeExists(ctx context.Context, store service.RecipeStore, name string) (bool, error) {
	recipes, err := store.List(ctx, service.RecipeFilter{Query: name})
	if err != nil {
		return false, err
	}
	for _, r := range recipes {
		if strings.EqualFold(r.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
