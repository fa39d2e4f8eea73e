package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/mocks"
	"github.com/culinario/backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetScaledRecipe(t *testing.T) {
	s := setupTestServer(t)
	id := s.createRecipe(t)

	w := s.do(t, http.MethodGet, "/api/v1/recipes/"+id+"?servings=4", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RecipeResponse
	decode(t, w, &resp)
	assert.Equal(t, "Pfannkuchen", resp.Recipe.Name)
	assert.Equal(t, 2, resp.Recipe.Servings)
	assert.Equal(t, 200.0, resp.Recipe.Ingredients[0].Amount)

	assert.Equal(t, 2, resp.Scaled.BaseServings)
	assert.Equal(t, 4, resp.Scaled.Servings)
	require.Len(t, resp.Scaled.Ingredients, 2)
	assert.Equal(t, "400 g", resp.Scaled.Ingredients[0].Display)
	assert.Equal(t, "6", resp.Scaled.Ingredients[1].Display)
}

func TestGetRecipeDefaultsToBaseServings(t *testing.T) {
	s := setupTestServer(t)
	id := s.createRecipe(t)

	w := s.do(t, http.MethodGet, "/api/v1/recipes/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp RecipeResponse
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.Scaled.Servings)
	assert.Equal(t, "200 g", resp.Scaled.Ingredients[0].Display)
}

func TestGetRecipeErrors(t *testing.T) {
	s := setupTestServer(t)
	id := s.createRecipe(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"invalid id", "/api/v1/recipes/not-a-uuid", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown id", "/api/v1/recipes/" + uuid.NewString(), http.StatusNotFound, "NOT_FOUND"},
		{"zero servings", "/api/v1/recipes/" + id + "?servings=0", http.StatusBadRequest, "BAD_REQUEST"},
		{"text servings", "/api/v1/recipes/" + id + "?servings=viele", http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	s := setupTestServer(t)

	body := pancakeRecipe()
	body["name"] = ""
	w := s.do(t, http.MethodPost, "/api/v1/recipes", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/recipes", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecipeDefaultsServings(t *testing.T) {
	s := setupTestServer(t)

	body := pancakeRecipe()
	delete(body, "servings")
	w := s.do(t, http.MethodPost, "/api/v1/recipes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created CreateRecipeResponse
	decode(t, w, &created)

	w = s.do(t, http.MethodGet, "/api/v1/recipes/"+created.ID, nil)
	var resp RecipeResponse
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.Recipe.Servings)
}

func TestListRecipesFilters(t *testing.T) {
	s := setupTestServer(t)
	s.createRecipe(t)
	body := pancakeRecipe()
	body["name"] = "Linsensuppe"
	body["category"] = "Hauptgericht"
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/recipes", body).Code)

	var resp struct {
		Recipes []model.Recipe `json:"recipes"`
	}

	decode(t, s.do(t, http.MethodGet, "/api/v1/recipes", nil), &resp)
	assert.Len(t, resp.Recipes, 2)

	decode(t, s.do(t, http.MethodGet, "/api/v1/recipes?category=Hauptgericht", nil), &resp)
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "Linsensuppe", resp.Recipes[0].Name)

	decode(t, s.do(t, http.MethodGet, "/api/v1/recipes?category=Alle&q=pfann", nil), &resp)
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "Pfannkuchen", resp.Recipes[0].Name)
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	s := setupTestServer(t)
	id := s.createRecipe(t)

	w := s.do(t, http.MethodPut, "/api/v1/recipes/"+id, map[string]interface{}{"name": "Crêpes", "servings": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Recipe model.Recipe `json:"recipe"`
	}
	decode(t, w, &updated)
	assert.Equal(t, "Crêpes", updated.Recipe.Name)
	assert.Equal(t, 4, updated.Recipe.Servings)

	w = s.do(t, http.MethodPut, "/api/v1/recipes/"+id, map[string]interface{}{"servings": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/recipes/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/recipes/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/recipes/"+id, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCookingStep(t *testing.T) {
	s := setupTestServer(t)
	id := s.createRecipe(t)

	w := s.do(t, http.MethodGet, "/api/v1/recipes/"+id+"/steps/2?servings=4", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var step model.CookingStep
	decode(t, w, &step)
	assert.Equal(t, 2, step.Total)
	assert.True(t, step.HasPrev)
	assert.False(t, step.HasNext)
	assert.Equal(t, "Eier unterrühren", step.Step.Description)
	require.Len(t, step.Step.Ingredients, 1)
	assert.Equal(t, "6", step.Step.Ingredients[0].Display)

	w = s.do(t, http.MethodGet, "/api/v1/recipes/"+id+"/steps/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/recipes/"+id+"/steps/eins", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCategories(t *testing.T) {
	s := setupTestServer(t)
	body := pancakeRecipe()
	body["category"] = "Brot"
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/recipes", body).Code)

	var resp struct {
		Categories []string `json:"categories"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/v1/categories", nil), &resp)
	assert.Equal(t, []string{"Vorspeise", "Hauptgericht", "Dessert", "Brot"}, resp.Categories)
}

func imageRequest(t *testing.T, path string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "pfannkuchen.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImageWithoutStorage(t *testing.T) {
	s := setupTestServer(t)
	id := s.createRecipe(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, imageRequest(t, "/api/v1/recipes/"+id+"/image"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", errorCode(t, w))
}

func TestUploadImage(t *testing.T) {
	uploader := &mocks.MockImageUploader{}
	url := "https://bucket.s3.eu-central-1.amazonaws.com/recipe-images/a.png"
	uploader.On("UploadReader", mock.Anything, mock.Anything, "pfannkuchen.png", mock.Anything).Return(url, nil).Once()

	s := setupTestServer(t, app.WithUploader(uploader))
	id := s.createRecipe(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, imageRequest(t, "/api/v1/recipes/"+id+"/image"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RecipeResponse
	decode(t, s.do(t, http.MethodGet, "/api/v1/recipes/"+id, nil), &resp)
	require.NotNil(t, resp.Recipe.Image)
	assert.Equal(t, url, *resp.Recipe.Image)
	uploader.AssertExpectations(t)
}

func TestUploadImageErrors(t *testing.T) {
	uploader := &mocks.MockImageUploader{}
	uploader.On("UploadReader", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("access denied")).Once()

	s := setupTestServer(t, app.WithUploader(uploader))
	id := s.createRecipe(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, imageRequest(t, "/api/v1/recipes/"+uuid.NewString()+"/image"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, imageRequest(t, "/api/v1/recipes/"+id+"/image"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "PERSISTENCE_FAILED", errorCode(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/recipes/"+id+"/image", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	uploader.AssertExpectations(t)
}
