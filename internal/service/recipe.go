package service

import (
	"context"
	"errors"
	"strings"

	"github.com/culinario/backend/internal/apperrors"
	"github.com/culinario/backend/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// DefaultCategories are offered even before any recipe uses them.
var DefaultCategories = []string{"Vorspeise", "Hauptgericht", "Dessert"}

// RecipeService handles recipe operations
type RecipeService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, log *zap.Logger) *RecipeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeService{db: db, log: log}
}

// ListAll returns every recipe in insertion order.
func (s *RecipeService) ListAll(ctx context.Context) ([]*model.Recipe, error) {
	return s.List(ctx, RecipeFilter{})
}

// likeEscaper quotes the LIKE wildcards of a search query.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the recipes of a category whose name contains the query,
// ignoring case in both.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{})
	if c := strings.TrimSpace(filter.Category); c != "" && c != AllCategories {
		query = query.Where("LOWER(category) = LOWER(?)", c)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(q))+"%")
	}

	var recipes []*model.Recipe
	if err := query.Order("created_at ASC").Find(&recipes).Error; err != nil {
		return nil, apperrors.NewPersistence("list recipes", err)
	}
	return recipes, nil
}

// GetByID retrieves a recipe by ID
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistence("load recipe", err)
	}
	return &recipe, nil
}

// Create validates and inserts a recipe and returns its new id.
func (s *RecipeService) Create(ctx context.Context, recipe *model.Recipe) (uuid.UUID, error) {
	if err := recipe.Validate(); err != nil {
		return uuid.Nil, apperrors.NewValidation(err).WithFields(model.FieldErrors(err))
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		s.log.Error("failed to create recipe", zap.String("name", recipe.Name), zap.Error(err))
		return uuid.Nil, apperrors.NewPersistence("save recipe", err)
	}
	s.log.Info("recipe created", zap.String("id", recipe.ID.String()), zap.String("name", recipe.Name))
	return recipe.ID, nil
}

// Update applies patch to a stored recipe. The merged recipe is validated
// as a whole before it is written.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, patch RecipePatch) (*model.Recipe, error) {
	recipe, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, apperrors.NewNotFound("recipe", id.String())
	}

	patch.apply(recipe)
	if err := recipe.Validate(); err != nil {
		return nil, apperrors.NewValidation(err).WithFields(model.FieldErrors(err))
	}
	if err := s.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return nil, apperrors.NewPersistence("update recipe", err)
	}
	return recipe, nil
}

// Delete deletes a recipe
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.NewPersistence("delete recipe", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("recipe", id.String())
	}
	s.log.Info("recipe deleted", zap.String("id", id.String()))
	return nil
}

// Categories returns the default categories followed by any other
// category stored recipes use, sorted.
func (s *RecipeService) Categories(ctx context.Context) ([]string, error) {
	var stored []string
	err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("category <> ''").
		Distinct().
		Pluck("category", &stored).Error
	if err != nil {
		return nil, apperrors.NewPersistence("list categories", err)
	}
	return mergeCategories(DefaultCategories, stored), nil
}

// mergeCategories keeps defaults first and appends the other stored
// categories in German collation order. Names differing only in case are
// the same category.
func mergeCategories(defaults, stored []string) []string {
	fold := cases.Fold()
	seen := make(map[string]bool, len(defaults)+len(stored))
	out := make([]string, 0, len(defaults)+len(stored))
	for _, c := range defaults {
		seen[fold.String(c)] = true
		out = append(out, c)
	}

	var extra []string
	for _, c := range stored {
		c = strings.TrimSpace(c)
		key := fold.String(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		extra = append(extra, c)
	}
	collate.New(language.German).SortStrings(extra)
	return append(out, extra...)
}

func (p RecipePatch) apply(r *model.Recipe) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Image != nil {
		if *p.Image == "" {
			r.Image = nil
		} else {
			img := *p.Image
			r.Image = &img
		}
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.OvenSettings != nil {
		r.OvenSettings = *p.OvenSettings
	}
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.Ingredients != nil {
		r.Ingredients = *p.Ingredients
	}
	if p.PreparationSteps != nil {
		r.PreparationSteps = *p.PreparationSteps
	}
}
