package api

import (
	"github.com/culinario/backend/internal/catalog"
	"github.com/culinario/backend/internal/ledger"
	"github.com/culinario/backend/internal/model"
)

// RecipeResponse is a stored recipe together with its view scaled to the
// requested servings.
type RecipeResponse struct {
	Recipe *model.Recipe      `json:"recipe"`
	Scaled model.ScaledRecipe `json:"scaled"`
}

// CreateRecipeResponse is returned after a recipe is stored.
type CreateRecipeResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// IngredientsResponse lists the known ingredients.
type IngredientsResponse struct {
	Catalog      []catalog.Ingredient `json:"catalog"`
	Placeholders []catalog.Ingredient `json:"placeholders"`
}

// ResolveRequest carries one free-text ingredient row.
type ResolveRequest struct {
	Input string `json:"input" binding:"required"`
}

// StepTextRequest sets the text of a draft step.
type StepTextRequest struct {
	Text string `json:"text"`
}

// StepIngredientsRequest replaces a step's allocation.
type StepIngredientsRequest struct {
	Ingredients []ledger.Allocation `json:"ingredients"`
}

// NudgeRequest changes one allocated amount by Delta.
type NudgeRequest struct {
	Name  string  `json:"name" binding:"required"`
	Delta float64 `json:"delta"`
}
