package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pageza/recipe-api/backend/internal/models"
	"github.com/pageza/recipe-api/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images IImageService
	log    *slog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images IImageService, log *slog.Logger) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
		log:    log,
	}
}

func preloadAttributes(db *gorm.DB) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }
	return db.Preload("Tags", byID).Preload("Ingredients", byID)
}

// ListRecipes returns the user's recipes, newest first. A recipe matches a
// filter if it carries any of the listed IDs; both filters must match when
// both are set.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uint, filter types.RecipeFilter) ([]models.Recipe, error) {
	q := s.db.WithContext(ctx).Where("recipes.user_id = ?", userID)

	if len(filter.TagIDs) > 0 {
		q = q.Where("recipes.id IN (?)",
			s.db.Table(TagKind.JoinTable).Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("recipes.id IN (?)",
			s.db.Table(IngredientKind.JoinTable).Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	recipes := []models.Recipe{}
	if err := preloadAttributes(q).Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe retrieves one of the user's recipes by ID
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	return s.find(preloadAttributes(s.db.WithContext(ctx)), userID, id)
}

// CreateRecipe stores a recipe owned by userID. Nested tags and ingredients
// are matched by name against the user's own and created when missing.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uint, req types.RecipeRequest) (*models.Recipe, error) {
	recipe := models.Recipe{UserID: userID}
	applyScalars(&recipe, req)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return setAttributes(tx, &recipe, userID, req)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("recipe created", slog.Uint64("recipe_id", uint64(recipe.ID)), slog.Uint64("user_id", uint64(userID)))
	return s.GetRecipe(ctx, userID, recipe.ID)
}

// UpdateRecipe writes the non-nil fields of req. A nil Tags or Ingredients
// slice leaves that set untouched; a non-nil one replaces it.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uint, req types.RecipeRequest) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if updates := scalarUpdates(req); len(updates) > 0 {
			if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}
		return setAttributes(tx, recipe, userID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, userID, id)
}

// DeleteRecipe deletes a recipe along with its tag and ingredient links. The
// tags and ingredients themselves are kept.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uint) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		image = recipe.Image
		return tx.Select(TagKind.Association, IngredientKind.Association).Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	s.images.Remove(ctx, image)
	s.log.Info("recipe deleted", slog.Uint64("recipe_id", uint64(id)))
	return nil
}

// UploadImage replaces the recipe image. The old file is removed once the new
// one is recorded.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id uint, filename string, body io.Reader) (*models.Recipe, error) {
	recipe, err := s.find(s.db.WithContext(ctx), userID, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Store(ctx, filename, body)
	if err != nil {
		return nil, err
	}

	old := recipe.Image
	if err := s.db.WithContext(ctx).Model(recipe).Update("image", key).Error; err != nil {
		s.images.Remove(ctx, key)
		return nil, fmt.Errorf("failed to save recipe image: %w", err)
	}

	recipe.Image = key
	if old != "" && old != key {
		s.images.Remove(ctx, old)
	}
	return recipe, nil
}

// ImageURL returns the public URL of the recipe image, or "" if unset.
func (s *RecipeService) ImageURL(recipe *models.Recipe) string {
	return s.images.URL(recipe.Image)
}

func (s *RecipeService) find(db *gorm.DB, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.Where("user_id = ?", userID).First(&recipe, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &recipe, nil
}

func applyScalars(r *models.Recipe, req types.RecipeRequest) {
	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.TimeMinutes != nil {
		r.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		r.Price = *req.Price
	}
	if req.Link != nil {
		r.Link = *req.Link
	}
}

func scalarUpdates(req types.RecipeRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TimeMinutes != nil {
		updates["time_minutes"] = *req.TimeMinutes
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	return updates
}

// setAttributes clears and refills each association whose slice is non-nil.
func setAttributes(tx *gorm.DB, recipe *models.Recipe, userID uint, req types.RecipeRequest) error {
	if req.Tags != nil {
		tags, err := resolveAttributes(tx, TagKind, userID, req.Tags, func(a models.Attribute) models.Tag {
			return models.Tag{Attribute: a}
		})
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, TagKind, tags); err != nil {
			return err
		}
	}

	if req.Ingredients != nil {
		ingredients, err := resolveAttributes(tx, IngredientKind, userID, req.Ingredients, func(a models.Attribute) models.Ingredient {
			return models.Ingredient{Attribute: a}
		})
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, IngredientKind, ingredients); err != nil {
			return err
		}
	}
	return nil
}

func replaceAssociation[T any](tx *gorm.DB, recipe *models.Recipe, kind AttributeKind, values []T) error {
	assoc := tx.Model(recipe).Association(kind.Association)
	if assoc.Error != nil {
		return assoc.Error
	}
	if len(values) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("failed to clear %ss: %w", kind.Name, err)
		}
		return nil
	}
	if err := assoc.Replace(values); err != nil {
		return fmt.Errorf("failed to attach %ss: %w", kind.Name, err)
	}
	return nil
}
