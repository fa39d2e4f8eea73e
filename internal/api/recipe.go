package api

import (
	"net/http"

	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/apperrors"
	"github.com/culinario/backend/internal/model"
	"github.com/culinario/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxImageSize bounds multipart image uploads.
const maxImageSize = 10 << 20

type RecipeHandler struct {
	state *app.State
}

func NewRecipeHandler(state *app.State) *RecipeHandler {
	return &RecipeHandler{state: state}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/image", h.UploadImage)
		recipes.GET("/:id/steps/:step", h.GetCookingStep)
	}
	router.GET("/categories", h.ListCategories)
}

// ListRecipes lists recipes, optionally by ?category= and ?q=
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.state.Store.List(c.Request.Context(), service.RecipeFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe returns a recipe and its view scaled to ?servings=
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, ok := h.load(c)
	if !ok {
		return
	}
	servings, ok := servingsQuery(c)
	if !ok {
		return
	}

	scaled := recipe.Scaled(servings)
	h.state.Metrics.RecipeViewed(scaled.Servings)
	c.JSON(http.StatusOK, RecipeResponse{Recipe: recipe, Scaled: scaled})
}

// GetCookingStep returns one scaled step for cooking mode
func (h *RecipeHandler) GetCookingStep(c *gin.Context) {
	recipe, ok := h.load(c)
	if !ok {
		return
	}
	n, ok := intParam(c, "step")
	if !ok {
		return
	}
	servings, ok := servingsQuery(c)
	if !ok {
		return
	}

	step, found := recipe.Scaled(servings).CookingStep(n)
	if !found {
		_ = c.Error(apperrors.NewNotFound("step", c.Param("step")))
		return
	}
	c.JSON(http.StatusOK, step)
}

// CreateRecipe stores a complete recipe document
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if !bindJSON(c, &recipe) {
		return
	}
	recipe.ID = uuid.Nil
	if recipe.Servings == 0 {
		recipe.Servings = h.state.DefaultServings
	}

	id, err := h.state.Store.Create(c.Request.Context(), &recipe)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, CreateRecipeResponse{ID: id.String(), Message: "Recipe created successfully"})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var patch service.RecipePatch
	if !bindJSON(c, &patch) {
		return
	}

	recipe, err := h.state.Store.Update(c.Request.Context(), id, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.state.Store.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stores the multipart field "image" and sets it as the
// recipe image
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	if h.state.Uploader == nil {
		_ = c.Error(apperrors.NewUnavailable("image storage is not configured"))
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize)
	header, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(apperrors.New(apperrors.CodeBadRequest, "image file is required", err.Error()))
		return
	}
	f, err := header.Open()
	if err != nil {
		_ = c.Error(apperrors.NewInternal(err))
		return
	}
	defer func() { _ = f.Close() }()

	ctx := c.Request.Context()
	existing, err := h.state.Store.GetByID(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if existing == nil {
		_ = c.Error(apperrors.NewNotFound("recipe", id.String()))
		return
	}

	url, err := h.state.Uploader.UploadReader(ctx, f, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		_ = c.Error(apperrors.NewPersistence("upload image", err))
		return
	}

	recipe, err := h.state.Store.Update(ctx, id, service.RecipePatch{Image: &url})
	if err != nil {
		h.state.Logger.Warn("uploaded image not attached to recipe", zap.String("url", url), zap.Error(err))
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe, "image": url})
}

// ListCategories returns the categories offered when writing a recipe
func (h *RecipeHandler) ListCategories(c *gin.Context) {
	cats, err := h.state.Store.Categories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *RecipeHandler) load(c *gin.Context) (*model.Recipe, bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}
	recipe, err := h.state.Store.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	if recipe == nil {
		_ = c.Error(apperrors.NewNotFound("recipe", id.String()))
		return nil, false
	}
	return recipe, true
}
