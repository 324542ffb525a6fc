package service

import (
	"context"
	"io"

	"github.com/pageza/recipe-api/backend/internal/models"
	"github.com/pageza/recipe-api/backend/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, req types.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// IRecipeService defines the interface for recipe operations. Every call is
// scoped to the calling user.
type IRecipeService interface {
	ListRecipes(ctx context.Context, userID uint, filter types.RecipeFilter) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, userID uint, req types.RecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id uint, req types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uint) error
	UploadImage(ctx context.Context, userID, id uint, filename string, body io.Reader) (*models.Recipe, error)
	ImageURL(recipe *models.Recipe) string
}

// IAttributeService defines tag and ingredient operations.
type IAttributeService interface {
	List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Attribute, error)
	Get(ctx context.Context, userID, id uint) (*models.Attribute, error)
	Create(ctx context.Context, userID uint, name string) (*models.Attribute, bool, error)
	Update(ctx context.Context, userID, id uint, req types.UpdateAttributeRequest) (*models.Attribute, error)
	Delete(ctx context.Context, userID, id uint) error
}

// IImageService validates and stores uploaded images.
type IImageService interface {
	Store(ctx context.Context, filename string, body io.Reader) (string, error)
	Remove(ctx context.Context, key string)
	URL(key string) string
}

var (
	_ IAuthService      = (*AuthService)(nil)
	_ IRecipeService    = (*RecipeService)(nil)
	_ IAttributeService = (*AttributeService)(nil)
	_ IImageService     = (*ImageService)(nil)
)
