package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/culinario/backend/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Culinario API is running",
		"version": "v1.0.0",
	})
}

// uuidParam parses a path parameter as UUID, reporting a bad request
// otherwise.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.NewBadRequest("invalid " + name))
		return uuid.Nil, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.NewBadRequest("invalid " + name))
		return 0, false
	}
	return n, true
}

// servingsQuery reads ?servings=N; zero means the recipe's own count.
func servingsQuery(c *gin.Context) (int, bool) {
	raw := c.Query("servings")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		_ = c.Error(apperrors.NewBadRequest("servings must be a positive number"))
		return 0, false
	}
	return n, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperrors.New(apperrors.CodeBadRequest, "Invalid request", err.Error()))
		return false
	}
	return true
}
