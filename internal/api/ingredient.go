package api

import (
	"errors"
	"net/http"

	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/apperrors"
	"github.com/culinario/backend/internal/catalog"
	"github.com/gin-gonic/gin"
)

type IngredientHandler struct {
	state *app.State
}

func NewIngredientHandler(state *app.State) *IngredientHandler {
	return &IngredientHandler{state: state}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.POST("/resolve", h.ResolveIngredient)
	}
}

// ListIngredients returns the catalog and the placeholders created so far
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	placeholders, err := h.state.Resolver.Placeholders().List(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.NewPersistence("list placeholder ingredients", err))
		return
	}
	if placeholders == nil {
		placeholders = []catalog.Ingredient{}
	}
	c.JSON(http.StatusOK, IngredientsResponse{
		Catalog:      h.state.Catalog.All(),
		Placeholders: placeholders,
	})
}

// ResolveIngredient maps one free-text row to amount and ingredient
func (h *IngredientHandler) ResolveIngredient(c *gin.Context) {
	var req ResolveRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.state.Resolver.Resolve(c.Request.Context(), req.Input)
	if errors.Is(err, catalog.ErrEmptyInput) {
		_ = c.Error(apperrors.NewValidation(err))
		return
	}
	if err != nil {
		_ = c.Error(apperrors.NewPersistence("store placeholder ingredient", err))
		return
	}

	switch {
	case res.Created:
		h.state.Metrics.IngredientResolved("created")
	case res.Placeholder:
		h.state.Metrics.IngredientResolved("placeholder")
	default:
		h.state.Metrics.IngredientResolved("catalog")
	}
	c.JSON(http.StatusOK, res)
}
