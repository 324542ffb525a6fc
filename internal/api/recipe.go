package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pageza/recipe-api/backend/internal/metrics"
	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
)

var maxPrice = decimal.NewFromInt(1000)

// RecipeHandler serves /recipes. Every call is scoped to the authenticated user.
type RecipeHandler struct {
	recipes        service.IRecipeService
	maxUploadBytes int64
	metrics        *metrics.Metrics
	log            *slog.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, maxUploadBytes int64, m *metrics.Metrics, log *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:        recipes,
		maxUploadBytes: maxUploadBytes,
		metrics:        m,
		log:            log,
	}
}

// List handles GET /recipes?tags=1,2&ingredients=3
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	errs := FieldErrors{}
	tagIDs, err := parseIDList(c.Query("tags"))
	if err != nil {
		errs.Add("tags", err.Error())
	}
	ingredientIDs, err := parseIDList(c.Query("ingredients"))
	if err != nil {
		errs.Add("ingredients", err.Error())
	}
	if validationFailed(c, errs) {
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), userID, types.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = types.NewRecipeResponse(&recipes[i])
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationFailed(c, recipeFieldErrors(req, true)) {
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.metrics.RecipeCreated()
	c.JSON(http.StatusCreated, types.NewRecipeDetailResponse(recipe, h.recipes.ImageURL(recipe)))
}

// Get handles GET /recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetailResponse(recipe, h.recipes.ImageURL(recipe)))
}

// Replace handles PUT /recipes/:id. title, time_minutes and price are required.
func (h *RecipeHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

// Patch handles PATCH /recipes/:id
func (h *RecipeHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

func (h *RecipeHandler) update(c *gin.Context, full bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationFailed(c, recipeFieldErrors(req, full)) {
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetailResponse(recipe, h.recipes.ImageURL(recipe)))
}

// Delete handles DELETE /recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	h.metrics.RecipeDeleted()
	c.Status(http.StatusNoContent)
}

// recipeFieldErrors holds the checks binding tags cannot express. With full
// set the fields a new recipe needs are required.
func recipeFieldErrors(req types.RecipeRequest, full bool) FieldErrors {
	errs := FieldErrors{}
	if full {
		if req.Title == nil {
			errs.Add("title", msgRequired)
		}
		if req.TimeMinutes == nil {
			errs.Add("time_minutes", msgRequired)
		}
		if req.Price == nil {
			errs.Add("price", msgRequired)
		}
	}
	if isBlank(req.Title) {
		errs.Add("title", msgBlank)
	}
	if req.Price != nil {
		if !req.Price.Equal(req.Price.Round(2)) {
			errs.Add("price", "Ensure that there are no more than 2 decimal places.")
		}
		if req.Price.Abs().GreaterThanOrEqual(maxPrice) {
			errs.Add("price", "Ensure that there are no more than 5 digits in total.")
		}
	}
	for i, t := range req.Tags {
		if strings.TrimSpace(t.Name) == "" {
			errs.Add(fmt.Sprintf("tags[%d].name", i), msgBlank)
		}
	}
	for i, in := range req.Ingredients {
		if strings.TrimSpace(in.Name) == "" {
			errs.Add(fmt.Sprintf("ingredients[%d].name", i), msgBlank)
		}
	}
	return errs
}

// parseIDList parses a comma separated list of ids such as "1,2,3".
func parseIDList(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid id.", part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
