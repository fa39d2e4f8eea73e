package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ph-%d", n)
	}
}

func TestResolveCatalogSuffix(t *testing.T) {
	r := NewResolver(Default(), nil)

	res, err := r.Resolve(context.Background(), "2 EL Butter")
	require.NoError(t, err)
	assert.Equal(t, "2 EL", res.Amount)
	assert.Equal(t, "Butter", res.Name)
	assert.Equal(t, "butter.png", res.Ingredient.Image)
	assert.False(t, res.Placeholder)
	assert.False(t, res.Created)
}

func TestResolveIsCaseInsensitiveAndNormalizesSpace(t *testing.T) {
	r := NewResolver(Default(), nil)

	res, err := r.Resolve(context.Background(), "  500   g   gnocchi ")
	require.NoError(t, err)
	assert.Equal(t, "500 g", res.Amount)
	assert.Equal(t, "Gnocchi", res.Name, "catalog spelling wins")
}

func TestResolveUnknownCreatesPlaceholder(t *testing.T) {
	store := NewMemoryPlaceholderStore()
	r := NewResolver(Default(), store, WithIDGenerator(sequentialIDs()))

	res, err := r.Resolve(context.Background(), "3 Prisen Magie")
	require.NoError(t, err)
	assert.Equal(t, "3 Prisen", res.Amount)
	assert.Equal(t, "Magie", res.Name)
	assert.True(t, res.Placeholder)
	assert.True(t, res.Created)
	assert.Equal(t, Ingredient{ID: "ph-1", Name: "Magie", Image: PlaceholderImage, Placeholder: true}, res.Ingredient)

	stored, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestResolveReusesPlaceholder(t *testing.T) {
	store := NewMemoryPlaceholderStore()
	r := NewResolver(Default(), store, WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	_, err := r.Resolve(ctx, "3 Prisen Magie")
	require.NoError(t, err)

	res, err := r.Resolve(ctx, "1 Prise magie")
	require.NoError(t, err)
	assert.Equal(t, "1 Prise", res.Amount)
	assert.Equal(t, "Magie", res.Name)
	assert.True(t, res.Placeholder)
	assert.False(t, res.Created)
	assert.Equal(t, "ph-1", res.Ingredient.ID)

	stored, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestResolveUnknownSplits(t *testing.T) {
	tests := []struct {
		input  string
		amount string
		name   string
	}{
		{"Drachenfrucht", "", "Drachenfrucht"},
		{"2 Drachenfrüchte", "2", "Drachenfrüchte"},
		{"1,5 Tassen Bulgur", "1,5 Tassen", "Bulgur"},
		{"2 EL Rote Bete", "2 EL", "Rote Bete"},
		{"Süßkartoffel", "", "Süßkartoffel"},
		{"Vitamin B12", "", "Vitamin B12"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := NewResolver(New(nil), nil)
			res, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, res.Amount)
			assert.Equal(t, tt.name, res.Name)
			assert.True(t, res.Placeholder)
		})
	}
}

func TestResolveTieBreak(t *testing.T) {
	ctx := context.Background()

	longest := NewResolver(Default(), nil)
	res, err := longest.Resolve(ctx, "1 TL Meersalz")
	require.NoError(t, err)
	assert.Equal(t, "Meersalz", res.Name)
	assert.Equal(t, "1 TL", res.Amount)

	first := NewResolver(Default(), nil, WithMatchPolicy(MatchFirst))
	res, err = first.Resolve(ctx, "1 TL Meersalz")
	require.NoError(t, err)
	assert.Equal(t, "Salz", res.Name, "catalog order decides")
	assert.Equal(t, "1 TL Meer", res.Amount)
}

func TestResolveLongestPrefersMultiWordNames(t *testing.T) {
	r := NewResolver(Default(), nil)
	res, err := r.Resolve(context.Background(), "130 g getrocknete Tomaten")
	require.NoError(t, err)
	assert.Equal(t, "Getrocknete Tomaten", res.Name)
	assert.Equal(t, "130 g", res.Amount)
}

func TestResolveLongestTieUsesCatalogOrder(t *testing.T) {
	c := New([]Ingredient{
		{ID: "a", Name: "Mehl", Image: "a.png"},
		{ID: "b", Name: "MEHL", Image: "b.png"},
	})
	assert.Equal(t, 1, c.Len(), "duplicate names collapse")

	r := NewResolver(c, nil)
	res, err := r.Resolve(context.Background(), "200 g Mehl")
	require.NoError(t, err)
	assert.Equal(t, "a", res.Ingredient.ID)
}

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(Default(), nil)
	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

type failingStore struct {
	MemoryPlaceholderStore
}

func (*failingStore) List(context.Context) ([]Ingredient, error) {
	return nil, errors.New("connection refused")
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	r := NewResolver(Default(), &failingStore{})
	_, err := r.Resolve(context.Background(), "2 EL Butter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLookupFallsBackToPlaceholders(t *testing.T) {
	store := NewMemoryPlaceholderStore()
	r := NewResolver(Default(), store)
	ctx := context.Background()

	_, ok, err := r.Lookup(ctx, "Magie")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Resolve(ctx, "Magie")
	require.NoError(t, err)

	ing, ok, err := r.Lookup(ctx, "MAGIE")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, PlaceholderImage, ing.Image)

	ing, ok, err = r.Lookup(ctx, "zimt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Zimt", ing.Name)
}

func TestParseMatchPolicy(t *testing.T) {
	assert.Equal(t, MatchFirst, ParseMatchPolicy("FIRST"))
	assert.Equal(t, MatchLongest, ParseMatchPolicy("longest"))
	assert.Equal(t, MatchLongest, ParseMatchPolicy(""))
	assert.Equal(t, "first", MatchFirst.String())
}
