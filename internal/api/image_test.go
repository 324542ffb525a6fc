package api_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("user@example.com")
	recipe := env.createRecipe(token, nil)
	path := fmt.Sprintf("/api/v1/recipes/%d/upload-image", recipe.ID)

	rr := env.upload(path, token, "image", "photo.png", pngBytes(t))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode[map[string]any](t, rr)
	assert.EqualValues(t, recipe.ID, body["id"])
	image, _ := body["image"].(string)
	assert.True(t, strings.HasPrefix(image, "/media/uploads/recipe/"), image)
	assert.True(t, strings.HasSuffix(image, ".png"), image)
	assert.NotContains(t, image, "photo")

	rr = env.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), token, nil)
	detail := decode[recipeJSON](t, rr)
	require.NotNil(t, detail.Image)
	assert.Equal(t, image, *detail.Image)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ImagesUploaded))

	rr = env.upload(path+"/", token, "image", "notes.txt", []byte("definitely not an image"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "image")
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ImagesRejected))

	rr = env.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), token, nil)
	detail = decode[recipeJSON](t, rr)
	require.NotNil(t, detail.Image)
	assert.Equal(t, image, *detail.Image, "rejected upload leaves the image alone")
}

func TestUploadImageMissingFile(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("user@example.com")
	recipe := env.createRecipe(token, nil)

	rr := env.upload(fmt.Sprintf("/api/v1/recipes/%d/upload-image", recipe.ID), token, "file", "photo.png", pngBytes(t))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"No file was submitted."}, decode[map[string][]string](t, rr)["image"])

	rr = env.do(http.MethodPost, fmt.Sprintf("/api/v1/recipes/%d/upload-image", recipe.ID), token, map[string]string{"image": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadImageOtherUsersRecipe(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login("owner@example.com")
	other := env.login("other@example.com")
	recipe := env.createRecipe(owner, nil)

	rr := env.upload(fmt.Sprintf("/api/v1/recipes/%d/upload-image", recipe.ID), other, "image", "photo.png", pngBytes(t))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
