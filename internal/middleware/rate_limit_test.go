package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/pageza/recipe-api/backend/internal/logging"
	"github.com/pageza/recipe-api/backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return s, client
}

func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, id)
		c.Next()
	}
}

func TestIsAllowed(t *testing.T) {
	_, client := newTestRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Name: "t", Window: time.Minute, Limit: 2, KeyPrefix: "rl:test"}, nil, logging.Discard())
	ctx := context.Background()

	remaining, _, err := rl.GetRemainingRequests(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	allowed, remaining, reset, err := rl.IsAllowed(ctx, "7")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.True(t, reset.After(time.Now()))

	allowed, _, _, err = rl.IsAllowed(ctx, "7")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "7")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "8")
	require.NoError(t, err)
	assert.True(t, allowed, "other subjects have their own budget")
}

func TestRateLimitMiddleware(t *testing.T) {
	_, client := newTestRedis(t)
	m := metrics.New()
	rl := NewRecipeWriteRateLimiter(client, 1, time.Minute, m, logging.Discard())

	router := gin.New()
	router.POST("/recipes", asUser(1), rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("recipe_write")))
}

func TestPerRecipeRateLimitMiddleware(t *testing.T) {
	_, client := newTestRedis(t)
	rl := NewImageUploadRateLimiter(client, 1, time.Minute, nil, logging.Discard())

	router := gin.New()
	router.POST("/recipes/:id/upload-image", asUser(1), rl.PerRecipeRateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(path string) int {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("/recipes/1/upload-image"))
	assert.Equal(t, http.StatusTooManyRequests, do("/recipes/1/upload-image"))
	assert.Equal(t, http.StatusOK, do("/recipes/2/upload-image"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	s, client := newTestRedis(t)
	rl := NewRecipeWriteRateLimiter(client, 1, time.Minute, nil, logging.Discard())
	s.Close()

	router := gin.New()
	router.POST("/recipes", asUser(1), rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
}

func TestRateLimitRequiresUser(t *testing.T) {
	_, client := newTestRedis(t)
	rl := NewRecipeWriteRateLimiter(client, 1, time.Minute, nil, logging.Discard())

	router := gin.New()
	router.POST("/recipes", rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
