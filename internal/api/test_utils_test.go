package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/culinario/backend/config"
	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/draft"
	"github.com/culinario/backend/internal/metrics"
	"github.com/culinario/backend/internal/middleware"
	"github.com/culinario/backend/internal/model"
	"github.com/culinario/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	state  *app.State
	drafts *draft.Manager
}

func setupTestServer(t *testing.T, opts ...app.Option) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Recipe{}))

	cfg := &config.Config{
		MatchPolicy:          "longest",
		OverAllocationPolicy: "reject",
		DefaultServings:      2,
	}
	opts = append([]app.Option{app.WithMetrics(metrics.New())}, opts...)
	state := app.New(cfg, service.NewRecipeService(db, zap.NewNop()), zap.NewNop(), opts...)
	drafts := draft.NewManager(state)

	router := gin.New()
	router.Use(middleware.Errors(zap.NewNop()))
	v1 := router.Group("/api/v1")
	NewRecipeHandler(state).RegisterRoutes(v1)
	NewIngredientHandler(state).RegisterRoutes(v1)
	NewDraftHandler(drafts, nil).RegisterRoutes(v1)

	return &testServer{router: router, state: state, drafts: drafts}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	decode(t, w, &resp)
	return resp.Code
}

func pancakeRecipe() map[string]interface{} {
	return map[string]interface{}{
		"name":     "Pfannkuchen",
		"category": "Dessert",
		"servings": 2,
		"ingredients": []map[string]interface{}{
			{"name": "Mehl", "amount": 200, "unit": "g"},
			{"name": "Eier", "amount": 3},
		},
		"preparationSteps": []map[string]interface{}{
			{"stepNumber": 1, "description": "Mehl sieben", "ingredients": []map[string]interface{}{
				{"name": "Mehl", "amount": 200, "unit": "g"},
			}},
			{"stepNumber": 2, "description": "Eier unterrühren", "ingredients": []map[string]interface{}{
				{"name": "Eier", "amount": 3},
			}},
		},
	}
}

func (s *testServer) createRecipe(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/recipes", pancakeRecipe())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp CreateRecipeResponse
	decode(t, w, &resp)
	return resp.ID
}
