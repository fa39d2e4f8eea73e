package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// conservationTolerance absorbs float noise when step shares are summed.
const conservationTolerance = 1e-9

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("ingredient_name", validateIngredientName)
	return v
}

// validateIngredientName rejects blank and markup-bearing names
func validateIngredientName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" || len(name) > 200 {
		return false
	}
	return !strings.ContainsAny(name, "<>")
}

// Validate checks field rules, gapless step numbering and that no step
// uses more of an ingredient than the recipe lists.
func (r *Recipe) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.checkStepNumbers(); err != nil {
		return err
	}
	return r.CheckConservation()
}

func (r *Recipe) checkStepNumbers() error {
	for i, step := range r.PreparationSteps {
		if step.StepNumber != i+1 {
			return fmt.Errorf("step %d has number %d, steps must be numbered 1..n", i+1, step.StepNumber)
		}
	}
	return nil
}

// ErrStepIngredientUnknown is returned when a step uses an ingredient the
// recipe does not list.
var ErrStepIngredientUnknown = errors.New("step uses an ingredient that is not in the recipe")

// ErrStepIngredientExceeded is returned when the steps together use more
// of an ingredient than the recipe lists.
var ErrStepIngredientExceeded = errors.New("steps use more of an ingredient than the recipe lists")

// ErrStepIngredientUnmeasured is returned when a step gives no number for
// an ingredient the recipe measures.
var ErrStepIngredientUnmeasured = errors.New("step amount of a measured ingredient has no number")

// CheckConservation verifies that, per ingredient, the step shares add up
// to no more than the top-level amount. Names match case-insensitively.
// An ingredient listed only without a number has no total, so any step
// may use it; once a line of it has a number, unmeasured lines of the
// same name are ignored.
func (r *Recipe) CheckConservation() error {
	totals := make(map[string]float64, len(r.Ingredients))
	measured := make(map[string]bool, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		key := ingredientKey(ing.Name)
		if _, ok := measured[key]; !ok {
			measured[key] = false
		}
		if !ing.Unmeasured {
			totals[key] += ing.Amount
			measured[key] = true
		}
	}

	used := make(map[string]float64, len(totals))
	for _, step := range r.PreparationSteps {
		for _, ing := range step.Ingredients {
			key := ingredientKey(ing.Name)
			isMeasured, ok := measured[key]
			if !ok {
				return fmt.Errorf("%w: step %d uses %q", ErrStepIngredientUnknown, step.StepNumber, ing.Name)
			}
			if !isMeasured {
				continue
			}
			if ing.Unmeasured {
				return fmt.Errorf("%w: step %d uses %q of %s", ErrStepIngredientUnmeasured, step.StepNumber, ing.Unit, ing.Name)
			}
			used[key] += ing.Amount
		}
	}

	for _, ing := range r.Ingredients {
		key := ingredientKey(ing.Name)
		if !measured[key] {
			continue
		}
		if used[key] > totals[key]+conservationTolerance {
			return fmt.Errorf("%w: %s uses %g of %g", ErrStepIngredientExceeded, ing.Name, used[key], totals[key])
		}
	}
	return nil
}

func ingredientKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FieldErrors turns validator errors into a field -> message map for API
// responses. Other errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", e.Field())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		case "gte":
			out[field] = fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
		case "ingredient_name":
			out[field] = "invalid ingredient name"
		default:
			out[field] = fmt.Sprintf("%s is invalid", e.Field())
		}
	}
	return out
}
