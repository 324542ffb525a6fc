package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/backend/config"
	"github.com/pageza/recipe-api/backend/internal/api"
	"github.com/pageza/recipe-api/backend/internal/logging"
	"github.com/pageza/recipe-api/backend/internal/metrics"
	"github.com/pageza/recipe-api/backend/internal/middleware"
	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t       *testing.T
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, opts ...func(*api.Dependencies)) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDatabase(t)
	log := logging.Discard()
	auth := service.NewAuthService(db, "test-secret", time.Hour, log).WithBcryptCost(bcrypt.MinCost)
	m := metrics.New()

	deps := api.Dependencies{
		Config: &config.Config{
			Environment:      config.Test,
			MaxUploadBytes:   1 << 20,
			RateLimitWindow:  time.Minute,
			RecipeWriteLimit: 100,
			ImageUploadLimit: 100,
		},
		DB:      db,
		Auth:    auth,
		Storage: service.NewLocalStorage(t.TempDir(), "/media"),
		Metrics: m,
		Logger:  log,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(middleware.ErrorHandler(log))
	api.RegisterRoutes(router, deps)

	return &testEnv{t: t, router: router, db: db, auth: auth, metrics: m}
}

// login creates a user and returns a bearer token for it.
func (e *testEnv) login(email string) string {
	e.t.Helper()
	testhelpers.CreateTestUser(e.t, e.db, email)
	token, _, err := e.auth.Login(context.Background(), email, testhelpers.TestPassword)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) upload(path, token, field, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}

type recipeJSON struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	TimeMinutes int        `json:"time_minutes"`
	Price       string     `json:"price"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	Image       *string    `json:"image"`
	Tags        []attrJSON `json:"tags"`
	Ingredients []attrJSON `json:"ingredients"`
}

type attrJSON struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func names(attrs []attrJSON) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Name
	}
	return out
}

func ids(recipes []recipeJSON) []uint {
	out := make([]uint, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID
	}
	return out
}
