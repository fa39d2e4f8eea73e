package router

import (
	"github.com/culinario/backend/internal/api"
	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/draft"
	"github.com/culinario/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options carries the optional pieces of the router.
type Options struct {
	CORSOrigins []string
	// DB backs the health check; nil reports healthy without a ping.
	DB api.Pinger
	// SaveLimiter guards draft saves; nil disables rate limiting.
	SaveLimiter gin.HandlerFunc
}

// SetupRouter configures the application routes
func SetupRouter(state *app.State, drafts *draft.Manager, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(state.Logger),
		middleware.RequestLogger(state.Logger),
	)
	if state.Metrics != nil {
		router.Use(state.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(state.Metrics.Handler()))
	}
	router.Use(
		middleware.CORS(opts.CORSOrigins),
		middleware.Errors(state.Logger),
	)

	health := api.NewHealthHandler(opts.DB)
	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.GET("/health", health.HealthCheck)
	api.NewRecipeHandler(state).RegisterRoutes(v1)
	api.NewIngredientHandler(state).RegisterRoutes(v1)
	api.NewDraftHandler(drafts, opts.SaveLimiter).RegisterRoutes(v1)

	return router
}
