// Package app holds the collaborators shared by authoring drafts and the
// HTTP handlers.
package app

import (
	"github.com/culinario/backend/config"
	"github.com/culinario/backend/internal/assembler"
	"github.com/culinario/backend/internal/catalog"
	"github.com/culinario/backend/internal/ledger"
	"github.com/culinario/backend/internal/metrics"
	"github.com/culinario/backend/internal/model"
	"github.com/culinario/backend/internal/service"
	"go.uber.org/zap"
)

// State is created once at startup and passed by reference.
type State struct {
	Store     service.RecipeStore
	Catalog   *catalog.Catalog
	Resolver  *catalog.Resolver
	Uploader  service.ImageUploader
	Assembler *assembler.Assembler
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	AllocationPolicy ledger.Policy
	DefaultServings  int
}

// Option configures a State.
type Option func(*State)

// WithUploader enables image uploads. Without it images are stored as
// given.
func WithUploader(u service.ImageUploader) Option {
	return func(s *State) { s.Uploader = u }
}

func WithPlaceholderStore(p catalog.PlaceholderStore) Option {
	return func(s *State) {
		s.Resolver = catalog.NewResolver(s.Catalog, p,
			catalog.WithMatchPolicy(s.Resolver.Policy()),
			catalog.WithLogger(s.Logger))
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *State) { s.Metrics = m }
}

// New builds the state from configuration around the built-in catalog
// and an in-memory placeholder store.
func New(cfg *config.Config, store service.RecipeStore, log *zap.Logger, opts ...Option) *State {
	if log == nil {
		log = zap.NewNop()
	}
	cat := catalog.Default()

	servings := cfg.DefaultServings
	if servings < 1 {
		servings = model.DefaultServings
	}

	s := &State{
		Store:   store,
		Catalog: cat,
		Resolver: catalog.NewResolver(cat, nil,
			catalog.WithMatchPolicy(catalog.ParseMatchPolicy(cfg.MatchPolicy)),
			catalog.WithLogger(log)),
		Assembler:        assembler.New(cat, assembler.WithDefaultImage(cfg.DefaultRecipeImage)),
		Logger:           log,
		AllocationPolicy: ledger.ParsePolicy(cfg.OverAllocationPolicy),
		DefaultServings:  servings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
