// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. Each instance owns its registry so tests
// can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recipesSavedTotal     *prometheus.CounterVec
	resolutionsTotal      *prometheus.CounterVec
	allocationRejections  prometheus.Counter
	imageUploadsTotal     *prometheus.CounterVec
	activeDrafts          prometheus.Gauge
	recipeViewsByServings prometheus.Histogram
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		recipesSavedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culinario_recipes_saved_total",
				Help: "Recipe saves by outcome",
			},
			[]string{"outcome"},
		),
		resolutionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culinario_ingredient_resolutions_total",
				Help: "Ingredient rows resolved, by match kind",
			},
			[]string{"kind"},
		),
		allocationRejections: f.NewCounter(
			prometheus.CounterOpts{
				Name: "culinario_allocation_rejections_total",
				Help: "Step allocations refused for exceeding the recipe total",
			},
		),
		imageUploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culinario_image_uploads_total",
				Help: "Recipe image uploads by outcome",
			},
			[]string{"outcome"},
		),
		activeDrafts: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "culinario_active_drafts",
				Help: "Authoring drafts currently held in memory",
			},
		),
		recipeViewsByServings: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "culinario_recipe_view_servings",
				Help:    "Serving counts recipes are viewed at",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
			},
		),
	}
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecipeSaved counts a save attempt; outcome is "created", "invalid" or
// "failed".
func (m *Metrics) RecipeSaved(outcome string) {
	if m == nil {
		return
	}
	m.recipesSavedTotal.WithLabelValues(outcome).Inc()
}

// IngredientResolved counts a resolution; kind is "catalog", "placeholder"
// or "created".
func (m *Metrics) IngredientResolved(kind string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) AllocationRejected() {
	if m == nil {
		return
	}
	m.allocationRejections.Inc()
}

func (m *Metrics) ImageUploaded(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.imageUploadsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetActiveDrafts(n int) {
	if m == nil {
		return
	}
	m.activeDrafts.Set(float64(n))
}

func (m *Metrics) RecipeViewed(servings int) {
	if m == nil {
		return
	}
	m.recipeViewsByServings.Observe(float64(servings))
}
