package models

import (
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeImageDir is the storage prefix for uploaded recipe images.
const RecipeImageDir = "uploads/recipe"

// Attribute holds the columns shared by tags and ingredients. Both are
// private to the user that created them.
type Attribute struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
}

type Tag struct {
	Attribute
	User User `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type Ingredient struct {
	Attribute
	User User `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type Recipe struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UserID      uint            `gorm:"not null;index" json:"-"`
	User        User            `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text;not null;default:''" json:"description"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"price"`
	Link        string          `gorm:"size:255;not null;default:''" json:"link"`
	Image       string          `gorm:"size:255;not null;default:''" json:"image"`
	Tags        []Tag           `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE;" json:"tags"`
	Ingredients []Ingredient    `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE;" json:"ingredients"`
}

// RecipeImagePath builds a collision free storage key for an uploaded image,
// keeping the original extension.
func RecipeImagePath(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) <= 1 {
		ext = ""
	}
	return path.Join(RecipeImageDir, uuid.NewString()+ext)
}
