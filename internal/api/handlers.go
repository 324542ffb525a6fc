package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/backend/config"
	"github.com/pageza/recipe-api/backend/internal/database"
	"github.com/pageza/recipe-api/backend/internal/metrics"
	"github.com/pageza/recipe-api/backend/internal/middleware"
	"github.com/pageza/recipe-api/backend/internal/service"
)

// Dependencies are the shared resources the routes are built from. Redis
// and Metrics may be nil.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Auth    service.IAuthService
	Storage service.Storage
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// HealthCheck reports whether the database answers a ping.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// handle registers path with and without a trailing slash.
func handle(r gin.IRoutes, method, path string, handlers ...gin.HandlerFunc) {
	r.Handle(method, path, handlers...)
	r.Handle(method, path+"/", handlers...)
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	log := deps.Logger

	images := service.NewImageService(deps.Storage, cfg.MaxUploadBytes, log)
	userHandler := NewUserHandler(deps.Auth, log)
	recipeHandler := NewRecipeHandler(service.NewRecipeService(deps.DB, images, log), cfg.MaxUploadBytes, deps.Metrics, log)
	tagHandler := NewAttributeHandler(service.NewTagService(deps.DB, log), "tag", log)
	ingredientHandler := NewAttributeHandler(service.NewIngredientService(deps.DB, log), "ingredient", log)

	var writeLimit, uploadLimit []gin.HandlerFunc
	var writeLimiter, uploadLimiter *middleware.RateLimiter
	if deps.Redis != nil {
		writeLimiter = middleware.NewRecipeWriteRateLimiter(deps.Redis, cfg.RecipeWriteLimit, cfg.RateLimitWindow, deps.Metrics, log)
		uploadLimiter = middleware.NewImageUploadRateLimiter(deps.Redis, cfg.ImageUploadLimit, cfg.RateLimitWindow, deps.Metrics, log)
		writeLimit = append(writeLimit, writeLimiter.RateLimitMiddleware())
		uploadLimit = append(uploadLimit, uploadLimiter.PerRecipeRateLimitMiddleware())
	}

	router.GET("/health", HealthCheck(deps.DB))

	v1 := router.Group("/api/v1")
	handle(v1, http.MethodGet, "/health", HealthCheck(deps.DB))

	handle(v1, http.MethodPost, "/user/create", userHandler.Create)
	handle(v1, http.MethodPost, "/user/token", userHandler.Token)

	authed := v1.Group("", middleware.AuthMiddleware(deps.Auth))

	handle(authed, http.MethodGet, "/user/me", userHandler.Me)
	handle(authed, http.MethodPut, "/user/me", userHandler.ReplaceMe)
	handle(authed, http.MethodPatch, "/user/me", userHandler.PatchMe)

	handle(authed, http.MethodGet, "/recipes", recipeHandler.List)
	handle(authed, http.MethodPost, "/recipes", append(writeLimit, recipeHandler.Create)...)
	handle(authed, http.MethodGet, "/recipes/:id", recipeHandler.Get)
	handle(authed, http.MethodPut, "/recipes/:id", append(writeLimit, recipeHandler.Replace)...)
	handle(authed, http.MethodPatch, "/recipes/:id", append(writeLimit, recipeHandler.Patch)...)
	handle(authed, http.MethodDelete, "/recipes/:id", recipeHandler.Delete)
	handle(authed, http.MethodPost, "/recipes/:id/upload-image", append(uploadLimit, recipeHandler.UploadImage)...)

	for prefix, h := range map[string]*AttributeHandler{"/tags": tagHandler, "/ingredients": ingredientHandler} {
		handle(authed, http.MethodGet, prefix, h.List)
		handle(authed, http.MethodPost, prefix, h.Create)
		handle(authed, http.MethodGet, prefix+"/:id", h.Get)
		handle(authed, http.MethodPut, prefix+"/:id", h.Replace)
		handle(authed, http.MethodPatch, prefix+"/:id", h.Patch)
		handle(authed, http.MethodDelete, prefix+"/:id", h.Delete)
	}

	if writeLimiter != nil {
		RegisterRateLimitRoutes(authed, writeLimiter, uploadLimiter)
	}
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(r gin.IRoutes, writeLimiter, uploadLimiter *middleware.RateLimiter) {
	handle(r, http.MethodGet, "/rate-limits/recipe-write", func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		rateLimitStatus(c, writeLimiter, strconv.FormatUint(uint64(userID), 10))
	})
	handle(r, http.MethodGet, "/rate-limits/image-upload/:id", func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c)
		if !ok {
			return
		}
		rateLimitStatus(c, uploadLimiter, strconv.FormatUint(uint64(userID), 10)+":"+strconv.FormatUint(uint64(id), 10))
	})
}

func rateLimitStatus(c *gin.Context, rl *middleware.RateLimiter, subject string) {
	remaining, resetTime, err := rl.GetRemainingRequests(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}
	cfg := rl.Config()
	c.JSON(http.StatusOK, gin.H{
		"limit":      cfg.Limit,
		"remaining":  remaining,
		"reset_time": resetTime.Unix(),
		"window":     cfg.Window.String(),
	})
}
