package types

import (
	"github.com/pageza/recipe-api/backend/internal/models"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type AttributeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeResponse is the list view of a recipe.
type RecipeResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Tags        []AttributeResponse `json:"tags"`
	Ingredients []AttributeResponse `json:"ingredients"`
}

// RecipeDetailResponse adds the fields only shown for a single recipe.
type RecipeDetailResponse struct {
	RecipeResponse
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type RecipeImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func NewAttributeResponse(a models.Attribute) AttributeResponse {
	return AttributeResponse{ID: a.ID, Name: a.Name}
}

func NewAttributeResponses(attrs []models.Attribute) []AttributeResponse {
	out := make([]AttributeResponse, len(attrs))
	for i, a := range attrs {
		out[i] = NewAttributeResponse(a)
	}
	return out
}

func NewRecipeResponse(r *models.Recipe) RecipeResponse {
	tags := make([]AttributeResponse, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = NewAttributeResponse(t.Attribute)
	}
	ingredients := make([]AttributeResponse, len(r.Ingredients))
	for i, in := range r.Ingredients {
		ingredients[i] = NewAttributeResponse(in.Attribute)
	}

	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

// NewRecipeDetailResponse renders r with imageURL, which is empty when the
// recipe has no image.
func NewRecipeDetailResponse(r *models.Recipe, imageURL string) RecipeDetailResponse {
	resp := RecipeDetailResponse{
		RecipeResponse: NewRecipeResponse(r),
		Description:    r.Description,
	}
	if imageURL != "" {
		resp.Image = &imageURL
	}
	return resp
}
