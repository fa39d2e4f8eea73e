package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culinario/backend/internal/catalog"
	"github.com/culinario/backend/internal/ledger"
	"github.com/culinario/backend/internal/model"
)

func known(name, image string) *catalog.Ingredient {
	return &catalog.Ingredient{ID: name, Name: name, Image: image}
}

func TestBuildIngredientsFiltersAndParses(t *testing.T) {
	a := New(catalog.Default())

	got := a.BuildIngredients([]Row{
		{Input: "500 g Gnocchi", Amount: "500 g", Name: "Gnocchi", Match: known("Gnocchi", "gnocchi.png")},
		{Input: "1,5 EL Butter", Amount: "1,5 EL", Name: "Butter", Match: known("Butter", "butter.png")},
		{Input: "3 Prisen Magie", Amount: "3 Prisen", Name: "Magie", Match: &catalog.Ingredient{Name: "Magie", Image: catalog.PlaceholderImage}},
		{Input: "Salz", Amount: "", Name: "Salz", Match: known("Salz", "salz.png")},
		{Input: "2 Eier", Amount: "2", Name: "Eier"},
		{Input: "", Amount: "1", Name: " "},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "Gnocchi", got[0].Name)
	assert.Equal(t, 500.0, got[0].Amount)
	assert.Equal(t, "g", got[0].Unit)
	require.NotNil(t, got[0].Image)
	assert.Equal(t, "gnocchi.png", *got[0].Image)

	assert.Equal(t, 1.5, got[1].Amount)
	assert.Equal(t, "EL", got[1].Unit)

	assert.Equal(t, "Magie", got[2].Name)
	assert.Equal(t, catalog.PlaceholderImage, *got[2].Image)
}

func TestBuildIngredientsUnparseableAmountFallsBack(t *testing.T) {
	a := New(catalog.Default())
	got := a.BuildIngredients([]Row{
		{Amount: "etwas", Name: "Zimt", Match: known("Zimt", "zimt.png")},
	})
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Amount)
	assert.Equal(t, "etwas", got[0].Unit)
	assert.True(t, got[0].Unmeasured)
}

func TestAssembleSharesUnmeasuredIngredientAcrossSteps(t *testing.T) {
	a := New(catalog.Default())

	r, err := a.Assemble(Input{
		Name: "Kartoffelsuppe",
		Rows: []Row{
			{Amount: "500 g", Name: "Kartoffeln", Match: known("Kartoffeln", "kartoffeln.png")},
			{Amount: "etwas", Name: "Salz", Match: known("Salz", "salz.png")},
		},
		Steps: []StepInput{{Text: "Kochen"}, {Text: "Abschmecken"}},
		Allocations: [][]ledger.Allocation{
			{{Name: "Kartoffeln", Amount: "500 g"}, {Name: "Salz", Amount: "etwas"}},
			{{Name: "Salz", Amount: "etwas"}},
		},
	})
	require.NoError(t, err)

	assert.False(t, r.Ingredients[0].Unmeasured)
	assert.True(t, r.Ingredients[1].Unmeasured)
	assert.True(t, r.PreparationSteps[1].Ingredients[0].Unmeasured)
	assert.NoError(t, r.Validate())
}

func TestBuildSteps(t *testing.T) {
	a := New(catalog.Default())

	steps := a.BuildSteps(
		[]StepInput{{Text: " Teig kneten "}, {Text: "Backen"}, {Text: "Servieren"}},
		[][]ledger.Allocation{
			{{Name: "mehl", Amount: "200 g"}, {Name: "Magie", Amount: "1 Prise"}},
			{},
		},
	)

	require.Len(t, steps, 3)
	for i, s := range steps {
		assert.Equal(t, i+1, s.StepNumber)
	}
	assert.Equal(t, "Teig kneten", steps[0].Description)

	require.Len(t, steps[0].Ingredients, 2)
	assert.Equal(t, model.Ingredient{Name: "mehl", Image: strPtr("mehl.png"), Amount: 200, Unit: "g"}, steps[0].Ingredients[0])
	assert.Equal(t, catalog.PlaceholderImage, *steps[0].Ingredients[1].Image)

	assert.Empty(t, steps[1].Ingredients)
	assert.Empty(t, steps[2].Ingredients, "steps beyond the allocation list are empty")
}

func TestAssembleValidation(t *testing.T) {
	a := New(catalog.Default())

	_, err := a.Assemble(Input{Name: "  ", Rows: []Row{{Amount: "1", Name: "Eier", Match: known("Eier", "eier.png")}}})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = a.Assemble(Input{Name: "Omelett", Rows: []Row{{Amount: "1", Name: "Eier"}}})
	assert.ErrorIs(t, err, ErrNoIngredients)
}

func TestAssemble(t *testing.T) {
	a := New(catalog.Default(), WithDefaultImage("https://img.example/default.jpg"))

	r, err := a.Assemble(Input{
		Name:         " Marry Me Gnocchi ",
		Category:     "Hauptgericht",
		OvenSettings: "180°C Umluft",
		Rows: []Row{
			{Amount: "500 g", Name: "Gnocchi", Match: known("Gnocchi", "gnocchi.png")},
			{Amount: "1 Packung", Name: "Tofu", Match: known("Tofu", "tofu.png")},
		},
		Steps:       []StepInput{{Text: "Gnocchi anbraten"}},
		Allocations: [][]ledger.Allocation{{{Name: "Gnocchi", Amount: "500 g"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Marry Me Gnocchi", r.Name)
	assert.Equal(t, model.DefaultServings, r.Servings)
	require.NotNil(t, r.Image)
	assert.Equal(t, "https://img.example/default.jpg", *r.Image)
	assert.Len(t, r.Ingredients, 2)
	assert.Len(t, r.PreparationSteps, 1)
	assert.NoError(t, r.Validate())

	img := "https://img.example/mine.jpg"
	r, err = a.Assemble(Input{
		Name:     "Tofu pur",
		Image:    &img,
		Servings: 4,
		Rows:     []Row{{Amount: "1 Packung", Name: "Tofu", Match: known("Tofu", "tofu.png")}},
	})
	require.NoError(t, err)
	assert.Equal(t, img, *r.Image)
	assert.Equal(t, 4, r.Servings)
	assert.Empty(t, r.PreparationSteps)
}

func strPtr(s string) *string { return &s }
