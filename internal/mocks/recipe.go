package mocks

import (
	"context"
	"io"

	"github.com/pageza/recipe-api/backend/internal/models"
	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

var (
	_ service.IRecipeService    = (*MockRecipeService)(nil)
	_ service.IAttributeService = (*MockAttributeService)(nil)
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, userID uint, filter types.RecipeFilter) ([]models.Recipe, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, userID uint, req types.RecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, userID, id uint, req types.RecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// UploadImage does not drain body; tests match on filename.
func (m *MockRecipeService) UploadImage(ctx context.Context, userID, id uint, filename string, body io.Reader) (*models.Recipe, error) {
	args := m.Called(ctx, userID, id, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) ImageURL(recipe *models.Recipe) string {
	if recipe.Image == "" {
		return ""
	}
	return "/media/" + recipe.Image
}

// MockAttributeService is a mock implementation of the tag and ingredient services
type MockAttributeService struct {
	mock.Mock
}

func (m *MockAttributeService) List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Attribute, error) {
	args := m.Called(ctx, userID, assignedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attribute), args.Error(1)
}

func (m *MockAttributeService) Get(ctx context.Context, userID, id uint) (*models.Attribute, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attribute), args.Error(1)
}

func (m *MockAttributeService) Create(ctx context.Context, userID uint, name string) (*models.Attribute, bool, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Attribute), args.Bool(1), args.Error(2)
}

func (m *MockAttributeService) Update(ctx context.Context, userID, id uint, req types.UpdateAttributeRequest) (*models.Attribute, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attribute), args.Error(1)
}

func (m *MockAttributeService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
