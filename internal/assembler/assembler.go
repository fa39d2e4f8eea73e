// Package assembler turns the state of a recipe being written into the
// persisted recipe document.
package assembler

import (
	"errors"
	"strings"

	"github.com/culinario/backend/internal/catalog"
	"github.com/culinario/backend/internal/ledger"
	"github.com/culinario/backend/internal/model"
	"github.com/culinario/backend/internal/quantity"
)

var (
	ErrEmptyName     = errors.New("recipe name is required")
	ErrNoIngredients = errors.New("recipe needs at least one ingredient")
)

// Row is one free-text ingredient row after resolution. Match is nil
// while the row has not been resolved.
type Row struct {
	Input  string              `json:"input"`
	Amount string              `json:"amount"`
	Name   string              `json:"name"`
	Match  *catalog.Ingredient `json:"match"`
}

// Resolved reports whether the row can be persisted.
func (r Row) Resolved() bool {
	return strings.TrimSpace(r.Amount) != "" && strings.TrimSpace(r.Name) != "" && r.Match != nil
}

// StepInput is the text of one step; its number is its position.
type StepInput struct {
	Text string `json:"text"`
}

// Input is everything needed to build a recipe.
type Input struct {
	Name         string
	Image        *string
	Category     string
	OvenSettings string
	Source       string
	Servings     int
	Rows         []Row
	Steps        []StepInput
	Allocations  [][]ledger.Allocation
}

// Assembler builds recipe documents, looking step ingredient images up in
// the catalog.
type Assembler struct {
	catalog      *catalog.Catalog
	defaultImage string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithDefaultImage sets the image used for recipes saved without one.
func WithDefaultImage(url string) Option {
	return func(a *Assembler) { a.defaultImage = url }
}

func New(c *catalog.Catalog, opts ...Option) *Assembler {
	a := &Assembler{catalog: c}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildIngredients keeps the rows that have an amount, a name and a
// match, and parses their amounts. Amounts without a number are kept as
// unmeasured text. Other rows are dropped silently.
func (a *Assembler) BuildIngredients(rows []Row) []model.Ingredient {
	out := make([]model.Ingredient, 0, len(rows))
	for _, row := range rows {
		if !row.Resolved() {
			continue
		}
		q, measured := quantity.ParseStrict(row.Amount)
		out = append(out, model.Ingredient{
			Name:       strings.TrimSpace(row.Name),
			Image:      imageRef(row.Match.Image),
			Amount:     q.Value,
			Unit:       q.Unit,
			Unmeasured: !measured,
		})
	}
	return out
}

// BuildSteps numbers the steps 1..n and attaches each step's allocation.
// Allocation images come from a case-insensitive catalog lookup and fall
// back to the placeholder image.
func (a *Assembler) BuildSteps(steps []StepInput, allocations [][]ledger.Allocation) []model.PreparationStep {
	out := make([]model.PreparationStep, len(steps))
	for i, step := range steps {
		var allocs []ledger.Allocation
		if i < len(allocations) {
			allocs = allocations[i]
		}

		ingredients := make([]model.Ingredient, 0, len(allocs))
		for _, alloc := range allocs {
			name := strings.TrimSpace(alloc.Name)
			if name == "" {
				continue
			}
			q, measured := quantity.ParseStrict(alloc.Amount)
			ingredients = append(ingredients, model.Ingredient{
				Name:       name,
				Image:      imageRef(a.catalog.ImageFor(name)),
				Amount:     q.Value,
				Unit:       q.Unit,
				Unmeasured: !measured,
			})
		}

		out[i] = model.PreparationStep{
			StepNumber:  i + 1,
			Description: strings.TrimSpace(step.Text),
			Ingredients: ingredients,
		}
	}
	return out
}

// Assemble validates in and builds the recipe. It fails with ErrEmptyName
// or ErrNoIngredients before anything is built.
func (a *Assembler) Assemble(in Input) (*model.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	ingredients := a.BuildIngredients(in.Rows)
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}

	servings := in.Servings
	if servings < 1 {
		servings = model.DefaultServings
	}

	image := in.Image
	if (image == nil || *image == "") && a.defaultImage != "" {
		image = imageRef(a.defaultImage)
	}

	return &model.Recipe{
		Name:             name,
		Image:            image,
		Category:         strings.TrimSpace(in.Category),
		OvenSettings:     strings.TrimSpace(in.OvenSettings),
		Source:           strings.TrimSpace(in.Source),
		Servings:         servings,
		Ingredients:      ingredients,
		PreparationSteps: a.BuildSteps(in.Steps, in.Allocations),
	}, nil
}

func imageRef(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
