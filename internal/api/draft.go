package api

import (
	"net/http"

	"github.com/culinario/backend/internal/draft"
	"github.com/gin-gonic/gin"
)

// DraftHandler exposes the authoring flow
type DraftHandler struct {
	drafts      *draft.Manager
	saveLimiter gin.HandlerFunc
}

// NewDraftHandler creates the handler. saveLimiter guards the save route
// and may be nil.
func NewDraftHandler(drafts *draft.Manager, saveLimiter gin.HandlerFunc) *DraftHandler {
	return &DraftHandler{drafts: drafts, saveLimiter: saveLimiter}
}

func (h *DraftHandler) RegisterRoutes(router *gin.RouterGroup) {
	drafts := router.Group("/drafts")
	{
		drafts.POST("", h.CreateDraft)
		drafts.GET("/:id", h.GetDraft)
		drafts.PUT("/:id", h.UpdateDraft)
		drafts.DELETE("/:id", h.DeleteDraft)

		drafts.POST("/:id/ingredients", h.AddIngredient)
		drafts.PUT("/:id/ingredients/:row", h.UpdateIngredient)
		drafts.DELETE("/:id/ingredients/:row", h.RemoveIngredient)

		drafts.POST("/:id/steps", h.AddStep)
		drafts.PUT("/:id/steps/:step", h.UpdateStep)
		drafts.DELETE("/:id/steps/:step", h.RemoveStep)
		drafts.GET("/:id/steps/:step/available", h.AvailableIngredients)
		drafts.PUT("/:id/steps/:step/ingredients", h.SetStepIngredients)
		drafts.POST("/:id/steps/:step/nudge", h.NudgeStepIngredient)

		save := []gin.HandlerFunc{h.SaveDraft}
		if h.saveLimiter != nil {
			save = append([]gin.HandlerFunc{h.saveLimiter}, save...)
		}
		drafts.POST("/:id/save", save...)
	}
}

func (h *DraftHandler) CreateDraft(c *gin.Context) {
	d := h.drafts.Create()
	c.JSON(http.StatusCreated, d.View())
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.View())
}

// UpdateDraft sets the scalar recipe fields
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	var patch draft.FieldsPatch
	if !bindJSON(c, &patch) {
		return
	}
	view, err := d.SetFields(patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.drafts.Delete(id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddIngredient resolves a free-text row and appends it
func (h *DraftHandler) AddIngredient(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	var req ResolveRequest
	if !bindJSON(c, &req) {
		return
	}
	row, err := d.AddRow(c.Request.Context(), req.Input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *DraftHandler) UpdateIngredient(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	i, ok := intParam(c, "row")
	if !ok {
		return
	}
	var req ResolveRequest
	if !bindJSON(c, &req) {
		return
	}
	row, err := d.UpdateRow(c.Request.Context(), i, req.Input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *DraftHandler) RemoveIngredient(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	i, ok := intParam(c, "row")
	if !ok {
		return
	}
	if err := d.RemoveRow(i); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) AddStep(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	var req StepTextRequest
	if !bindJSON(c, &req) {
		return
	}
	n := d.AddStep(req.Text)
	c.JSON(http.StatusCreated, gin.H{"stepNumber": n})
}

func (h *DraftHandler) UpdateStep(c *gin.Context) {
	d, n, ok := h.loadStep(c)
	if !ok {
		return
	}
	var req StepTextRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.UpdateStep(n, req.Text); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d.View())
}

func (h *DraftHandler) RemoveStep(c *gin.Context) {
	d, n, ok := h.loadStep(c)
	if !ok {
		return
	}
	if err := d.RemoveStep(n); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableIngredients lists what a step may still use
func (h *DraftHandler) AvailableIngredients(c *gin.Context) {
	d, n, ok := h.loadStep(c)
	if !ok {
		return
	}
	avail, err := d.Available(n)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stepNumber": n, "available": avail})
}

func (h *DraftHandler) SetStepIngredients(c *gin.Context) {
	d, n, ok := h.loadStep(c)
	if !ok {
		return
	}
	var req StepIngredientsRequest
	if !bindJSON(c, &req) {
		return
	}
	allocs, err := d.SetStepIngredients(n, req.Ingredients)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stepNumber": n, "ingredients": allocs})
}

func (h *DraftHandler) NudgeStepIngredient(c *gin.Context) {
	d, n, ok := h.loadStep(c)
	if !ok {
		return
	}
	var req NudgeRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := d.Nudge(n, req.Name, req.Delta)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// SaveDraft assembles the draft into a recipe and stores it
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipeID, err := h.drafts.Save(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, CreateRecipeResponse{ID: recipeID.String(), Message: "Recipe saved successfully"})
}

func (h *DraftHandler) load(c *gin.Context) (*draft.Draft, bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}
	d, err := h.drafts.Get(id)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return d, true
}

func (h *DraftHandler) loadStep(c *gin.Context) (*draft.Draft, int, bool) {
	d, ok := h.load(c)
	if !ok {
		return nil, 0, false
	}
	n, ok := intParam(c, "step")
	if !ok {
		return nil, 0, false
	}
	return d, n, true
}
