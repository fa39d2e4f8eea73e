package mocks

import (
	"context"
	"io"

	"github.com/culinario/backend/internal/model"
	"github.com/culinario/backend/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRecipeStore is a mock implementation of service.RecipeStore
type MockRecipeStore struct {
	mock.Mock
}

var _ service.RecipeStore = (*MockRecipeStore)(nil)

func (m *MockRecipeStore) ListAll(ctx context.Context) ([]*model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeStore) List(ctx context.Context, filter service.RecipeFilter) ([]*model.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeStore) Create(ctx context.Context, recipe *model.Recipe) (uuid.UUID, error) {
	args := m.Called(ctx, recipe)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRecipeStore) Update(ctx context.Context, id uuid.UUID, patch service.RecipePatch) (*model.Recipe, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeStore) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockImageUploader is a mock implementation of service.ImageUploader
type MockImageUploader struct {
	mock.Mock
}

var _ service.ImageUploader = (*MockImageUploader)(nil)

func (m *MockImageUploader) Upload(ctx context.Context, localPath string) (string, error) {
	args := m.Called(ctx, localPath)
	return args.String(0), args.Error(1)
}

func (m *MockImageUploader) UploadReader(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	args := m.Called(ctx, r, filename, contentType)
	return args.String(0), args.Error(1)
}
