package model

import (
	"github.com/google/uuid"

	"github.com/culinario/backend/internal/quantity"
)

// ScaledIngredient is an ingredient as shown for a chosen serving count.
// Amount is nil when scaling produced a value that cannot be shown or the
// amount has no number.
type ScaledIngredient struct {
	Name    string   `json:"name"`
	Image   *string  `json:"image"`
	Amount  *float64 `json:"amount"`
	Unit    string   `json:"unit"`
	Display string   `json:"display"`
}

// ScaledStep is a preparation step with scaled ingredient shares.
type ScaledStep struct {
	StepNumber  int                `json:"stepNumber"`
	Description string             `json:"description"`
	Ingredients []ScaledIngredient `json:"ingredients"`
}

// ScaledRecipe is a read-only view of a recipe for a serving count. It is
// derived on every request; the stored amounts are never changed.
type ScaledRecipe struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	Image            *string            `json:"image"`
	Category         string             `json:"category,omitempty"`
	OvenSettings     string             `json:"ovensettings,omitempty"`
	Source           string             `json:"source,omitempty"`
	BaseServings     int                `json:"baseServings"`
	Servings         int                `json:"servings"`
	Ingredients      []ScaledIngredient `json:"ingredients"`
	PreparationSteps []ScaledStep       `json:"preparationSteps"`
}

// Scaled returns the recipe scaled to servings. A servings value below one
// shows the recipe at its base serving count.
func (r *Recipe) Scaled(servings int) ScaledRecipe {
	base := r.BaseServings()
	if servings < 1 {
		servings = base
	}

	out := ScaledRecipe{
		ID:               r.ID,
		Name:             r.Name,
		Image:            r.Image,
		Category:         r.Category,
		OvenSettings:     r.OvenSettings,
		Source:           r.Source,
		BaseServings:     base,
		Servings:         servings,
		Ingredients:      scaleIngredients(r.Ingredients, base, servings),
		PreparationSteps: make([]ScaledStep, len(r.PreparationSteps)),
	}
	for i, step := range r.PreparationSteps {
		out.PreparationSteps[i] = ScaledStep{
			StepNumber:  step.StepNumber,
			Description: step.Description,
			Ingredients: scaleIngredients(step.Ingredients, base, servings),
		}
	}
	return out
}

func scaleIngredients(in []Ingredient, base, target int) []ScaledIngredient {
	out := make([]ScaledIngredient, len(in))
	for i, ing := range in {
		out[i] = ScaleIngredient(ing, base, target)
	}
	return out
}

// ScaleIngredient scales one ingredient and renders it at display
// precision. Unmeasured amounts are shown as written and have no Amount.
func ScaleIngredient(ing Ingredient, base, target int) ScaledIngredient {
	s := ScaledIngredient{Name: ing.Name, Image: ing.Image, Unit: ing.Unit}
	if ing.Unmeasured {
		s.Display = ing.Unit
		return s
	}
	v := quantity.Scale(ing.Amount, base, target)
	if !quantity.IsFinite(v) {
		return s
	}
	s.Amount = &v
	s.Display = quantity.Format(v, ing.Unit, quantity.DisplayDecimals)
	return s
}

// CookingStep is one step of a scaled recipe in cooking mode.
type CookingStep struct {
	RecipeID   uuid.UUID  `json:"recipeId"`
	RecipeName string     `json:"recipeName"`
	Servings   int        `json:"servings"`
	Step       ScaledStep `json:"step"`
	Total      int        `json:"total"`
	HasPrev    bool       `json:"hasPrev"`
	HasNext    bool       `json:"hasNext"`
}

// CookingStep returns step n (1-based) for cooking mode.
func (s ScaledRecipe) CookingStep(n int) (CookingStep, bool) {
	if n < 1 || n > len(s.PreparationSteps) {
		return CookingStep{}, false
	}
	return CookingStep{
		RecipeID:   s.ID,
		RecipeName: s.Name,
		Servings:   s.Servings,
		Step:       s.PreparationSteps[n-1],
		Total:      len(s.PreparationSteps),
		HasPrev:    n > 1,
		HasNext:    n < len(s.PreparationSteps),
	}, true
}
