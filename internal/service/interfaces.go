package service

import (
	"context"
	"io"

	"github.com/culinario/backend/internal/model"
	"github.com/google/uuid"
)

// AllCategories is the category filter value that selects every recipe.
const AllCategories = "Alle"

// RecipeFilter narrows List. Empty fields match everything.
type RecipeFilter struct {
	Category string
	Query    string
}

// RecipePatch carries the fields of an update. Nil fields are left as
// stored.
type RecipePatch struct {
	Name             *string               `json:"name"`
	Image            *string               `json:"image"`
	Category         *string               `json:"category"`
	OvenSettings     *string               `json:"ovensettings"`
	Source           *string               `json:"source"`
	Servings         *int                  `json:"servings"`
	Ingredients      *model.IngredientList `json:"ingredients"`
	PreparationSteps *model.StepList       `json:"preparationSteps"`
}

// RecipeStore persists recipe documents.
type RecipeStore interface {
	ListAll(ctx context.Context) ([]*model.Recipe, error)
	List(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error)
	// GetByID returns nil, nil when the recipe does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	Create(ctx context.Context, recipe *model.Recipe) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch RecipePatch) (*model.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

// ImageUploader stores a recipe image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
	UploadReader(ctx context.Context, r io.Reader, filename, contentType string) (string, error)
}
