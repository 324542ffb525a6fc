package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-api/backend/internal/api"
	"github.com/pageza/recipe-api/backend/internal/logging"
	"github.com/pageza/recipe-api/backend/internal/middleware"
	"github.com/pageza/recipe-api/backend/internal/mocks"
	"github.com/pageza/recipe-api/backend/internal/models"
	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
)

const mockUserID uint = 7

func mockRouter(register func(r gin.IRoutes)) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler(logging.Discard()))
	authed := router.Group("", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, mockUserID)
		c.Next()
	})
	register(authed)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestListRecipesPassesFilter(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("ListRecipes", mock.Anything, mockUserID, types.RecipeFilter{TagIDs: []uint{1, 2}}).
		Return([]models.Recipe{}, nil)

	h := api.NewRecipeHandler(recipes, 1<<20, nil, logging.Discard())
	router := mockRouter(func(r gin.IRoutes) { r.GET("/recipes", h.List) })

	for _, query := range []string{"tags=1,%202", "tags=1,,2,"} {
		rr := serve(router, http.MethodGet, "/recipes?"+query, "")
		assert.Equal(t, http.StatusOK, rr.Code, query)
		assert.JSONEq(t, `[]`, rr.Body.String())
	}
	recipes.AssertExpectations(t)
}

func TestServiceFailureIsInternalError(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("GetRecipe", mock.Anything, mockUserID, uint(3)).Return(nil, errors.New("connection reset"))

	h := api.NewRecipeHandler(recipes, 1<<20, nil, logging.Discard())
	router := mockRouter(func(r gin.IRoutes) { r.GET("/recipes/:id", h.Get) })

	rr := serve(router, http.MethodGet, "/recipes/3", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
}

func TestValidationStopsBeforeService(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	h := api.NewRecipeHandler(recipes, 1<<20, nil, logging.Discard())
	router := mockRouter(func(r gin.IRoutes) { r.POST("/recipes", h.Create) })

	rr := serve(router, http.MethodPost, "/recipes", `{"title": "x"`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "non_field_errors")

	rr = serve(router, http.MethodPost, "/recipes", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "title")

	recipes.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadImageTooLarge(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("UploadImage", mock.Anything, mockUserID, uint(4), "huge.png").Return(nil, service.ErrImageTooLarge)

	h := api.NewRecipeHandler(recipes, 1<<20, nil, logging.Discard())
	router := mockRouter(func(r gin.IRoutes) { r.POST("/recipes/:id/upload-image", h.UploadImage) })

	env := &testEnv{t: t, router: router}
	rr := env.upload("/recipes/4/upload-image", "", "image", "huge.png", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ensure the file is no larger than 1048576 bytes.")
}

func TestAttributeCreateExisting(t *testing.T) {
	attrs := new(mocks.MockAttributeService)
	attrs.On("Create", mock.Anything, mockUserID, "Basil").
		Return(&models.Attribute{ID: 9, Name: "Basil", UserID: mockUserID}, false, nil)

	h := api.NewAttributeHandler(attrs, "ingredient", logging.Discard())
	router := mockRouter(func(r gin.IRoutes) { r.POST("/ingredients", h.Create) })

	rr := serve(router, http.MethodPost, "/ingredients", `{"name": "  Basil "}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":9,"name":"Basil"}`, rr.Body.String())
	attrs.AssertExpectations(t)
}

func TestTokenUnexpectedError(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Login", mock.Anything, "a@example.com", "secret").Return("", nil, errors.New("db down"))

	h := api.NewUserHandler(auth, logging.Discard())
	router := mockRouter(func(r gin.IRoutes) { r.POST("/user/token", h.Token) })

	rr := serve(router, http.MethodPost, "/user/token", `{"email":"a@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAuthMiddlewareWithMockValidator(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", mock.Anything, "expired").Return(nil, service.ErrInvalidToken)

	router := gin.New()
	router.GET("/user/me", middleware.AuthMiddleware(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	auth.AssertExpectations(t)
}
