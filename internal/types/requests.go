package types

import (
	"github.com/shopspring/decimal"
)

// RegisterRequest is the body of POST /user/create
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
}

// LoginRequest is the body of POST /user/token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is the body of PUT/PATCH /user/me. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5,max=72"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
}

// AttributeRequest names a tag or ingredient, either nested inside a recipe
// or posted on its own.
type AttributeRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateAttributeRequest is the body of PUT/PATCH on a tag or ingredient.
type UpdateAttributeRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// RecipeRequest carries recipe writes. Scalar pointers distinguish "absent"
// from zero values. For Tags and Ingredients a nil slice means "leave alone"
// while an empty one clears the set.
type RecipeRequest struct {
	Title       *string            `json:"title" binding:"omitempty,max=255"`
	Description *string            `json:"description"`
	TimeMinutes *int               `json:"time_minutes"`
	Price       *decimal.Decimal   `json:"price"`
	Link        *string            `json:"link" binding:"omitempty,max=255"`
	Tags        []AttributeRequest `json:"tags" binding:"omitempty,dive"`
	Ingredients []AttributeRequest `json:"ingredients" binding:"omitempty,dive"`
}

// RecipeFilter narrows a recipe listing. Empty slices disable a filter;
// within one filter any match is enough.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}
