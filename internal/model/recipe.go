package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultServings is the base serving count of a recipe that does not say.
const DefaultServings = 2

// Ingredient is one ingredient of a recipe. Amount is the base quantity
// for the recipe's Servings. Inside a PreparationStep the same shape holds
// the share of the recipe ingredient that step uses.
//
// Unmeasured marks an amount written without a number ("etwas"): Unit
// then holds the text and Amount is 1.
type Ingredient struct {
	Name       string  `json:"name" validate:"required,ingredient_name"`
	Image      *string `json:"image"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	Unit       string  `json:"unit"`
	Unmeasured bool    `json:"unmeasured,omitempty"`
}

// PreparationStep is one numbered step of a recipe.
type PreparationStep struct {
	StepNumber  int          `json:"stepNumber" validate:"gte=1"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients" validate:"dive"`
}

// IngredientList is stored as a JSON document column
type IngredientList []Ingredient

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil || b == nil {
		*l = IngredientList{}
		return err
	}
	return json.Unmarshal(b, l)
}

// StepList is stored as a JSON document column
type StepList []PreparationStep

// Value implements the driver.Valuer interface
func (l StepList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *StepList) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil || b == nil {
		*l = StepList{}
		return err
	}
	return json.Unmarshal(b, l)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", value)
	}
}

// Recipe is the persisted recipe document.
type Recipe struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Name             string         `gorm:"size:255;not null" json:"name" validate:"required,max=255"`
	Image            *string        `gorm:"size:1024" json:"image"`
	Category         string         `gorm:"size:50;index" json:"category,omitempty" validate:"max=50"`
	OvenSettings     string         `gorm:"column:oven_settings;size:255" json:"ovensettings,omitempty" validate:"max=255"`
	Source           string         `gorm:"size:1024" json:"source,omitempty" validate:"max=1024"`
	Servings         int            `gorm:"not null;default:2" json:"servings" validate:"gte=1"`
	Ingredients      IngredientList `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients" validate:"dive"`
	PreparationSteps StepList       `gorm:"type:jsonb;not null;default:'[]'" json:"preparationSteps" validate:"dive"`
}

// BeforeCreate assigns the id and fills defaults.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Servings < 1 {
		r.Servings = DefaultServings
	}
	if r.Ingredients == nil {
		r.Ingredients = IngredientList{}
	}
	if r.PreparationSteps == nil {
		r.PreparationSteps = StepList{}
	}
	return nil
}

// BaseServings is the serving count the stored amounts are written for.
func (r *Recipe) BaseServings() int {
	if r.Servings < 1 {
		return DefaultServings
	}
	return r.Servings
}

func (Recipe) TableName() string {
	return "recipes"
}
