package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageza/recipe-api/backend/internal/models"
	"github.com/pageza/recipe-api/backend/internal/types"
	"gorm.io/gorm"
)

// AttributeKind describes where one attribute type lives in the schema.
type AttributeKind struct {
	Name        string
	Table       string
	JoinTable   string
	JoinColumn  string
	Association string
}

var (
	TagKind = AttributeKind{
		Name:        "tag",
		Table:       "tags",
		JoinTable:   "recipe_tags",
		JoinColumn:  "tag_id",
		Association: "Tags",
	}
	IngredientKind = AttributeKind{
		Name:        "ingredient",
		Table:       "ingredients",
		JoinTable:   "recipe_ingredients",
		JoinColumn:  "ingredient_id",
		Association: "Ingredients",
	}
)

// AttributeService manages one kind of per-user attribute (tags or
// ingredients). Rows are only ever visible to their owner.
type AttributeService struct {
	db   *gorm.DB
	kind AttributeKind
	log  *slog.Logger
}

func NewAttributeService(db *gorm.DB, kind AttributeKind, log *slog.Logger) *AttributeService {
	return &AttributeService{db: db, kind: kind, log: log}
}

func NewTagService(db *gorm.DB, log *slog.Logger) *AttributeService {
	return NewAttributeService(db, TagKind, log)
}

func NewIngredientService(db *gorm.DB, log *slog.Logger) *AttributeService {
	return NewAttributeService(db, IngredientKind, log)
}

func (s *AttributeService) Kind() AttributeKind {
	return s.kind
}

// List returns the user's attributes by name, descending. With assignedOnly
// set, only those attached to at least one recipe are returned, each once.
func (s *AttributeService) List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Attribute, error) {
	q := s.db.WithContext(ctx).Table(s.kind.Table).Where("user_id = ?", userID)
	if assignedOnly {
		q = q.Where("id IN (?)", s.db.Table(s.kind.JoinTable).Select(s.kind.JoinColumn))
	}

	attrs := []models.Attribute{}
	if err := q.Order("name DESC").Order("id DESC").Find(&attrs).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.kind.Name, err)
	}
	return attrs, nil
}

func (s *AttributeService) Get(ctx context.Context, userID, id uint) (*models.Attribute, error) {
	return s.find(s.db.WithContext(ctx), userID, id)
}

// Create returns the user's existing attribute with this name, or a new one.
// The boolean reports whether a row was inserted.
func (s *AttributeService) Create(ctx context.Context, userID uint, name string) (*models.Attribute, bool, error) {
	attr, created, err := getOrCreateAttribute(s.db.WithContext(ctx), s.kind, userID, name)
	if err != nil {
		return nil, false, err
	}
	return &attr, created, nil
}

func (s *AttributeService) Update(ctx context.Context, userID, id uint, req types.UpdateAttributeRequest) (*models.Attribute, error) {
	db := s.db.WithContext(ctx)
	attr, err := s.find(db, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != attr.Name {
		if err := db.Table(s.kind.Table).Where("id = ?", attr.ID).Update("name", *req.Name).Error; err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", s.kind.Name, err)
		}
		attr.Name = *req.Name
	}
	return attr, nil
}

// Delete removes the attribute and detaches it from every recipe.
func (s *AttributeService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attr, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.kind.JoinTable, s.kind.JoinColumn), attr.ID).Error; err != nil {
			return err
		}
		return tx.Table(s.kind.Table).Where("id = ?", attr.ID).Delete(&models.Attribute{}).Error
	})
}

func (s *AttributeService) find(db *gorm.DB, userID, id uint) (*models.Attribute, error) {
	var attr models.Attribute
	err := db.Table(s.kind.Table).Where("id = ? AND user_id = ?", id, userID).Take(&attr).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &attr, nil
}

// getOrCreateAttribute looks up (userID, name) in kind's table and inserts it
// when absent. There is no unique constraint on the pair, so two concurrent
// writers can both insert; the oldest row wins later lookups.
func getOrCreateAttribute(tx *gorm.DB, kind AttributeKind, userID uint, name string) (models.Attribute, bool, error) {
	var attr models.Attribute
	err := tx.Table(kind.Table).
		Where("user_id = ? AND name = ?", userID, name).
		Order("id").
		Take(&attr).Error
	if err == nil {
		return attr, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return attr, false, fmt.Errorf("failed to look up %s %q: %w", kind.Name, name, err)
	}

	attr = models.Attribute{Name: name, UserID: userID}
	if err := tx.Table(kind.Table).Create(&attr).Error; err != nil {
		return attr, false, fmt.Errorf("failed to create %s %q: %w", kind.Name, name, err)
	}
	return attr, true, nil
}

// resolveAttributes maps each requested name to an owned row, creating rows
// as needed. Names are trimmed and repeated names collapse to one entry.
func resolveAttributes[T any](tx *gorm.DB, kind AttributeKind, userID uint, in []types.AttributeRequest, wrap func(models.Attribute) T) ([]T, error) {
	seen := make(map[uint]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, item := range in {
		attr, _, err := getOrCreateAttribute(tx, kind, userID, strings.TrimSpace(item.Name))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[attr.ID]; dup {
			continue
		}
		seen[attr.ID] = struct{}{}
		out = append(out, wrap(attr))
	}
	return out, nil
}
