package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-api/backend/internal/models"
)

func TestAttributeEndpoints(t *testing.T) {
	for _, prefix := range []string{"/api/v1/tags", "/api/v1/ingredients"} {
		t.Run(prefix, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.login("user@example.com")
			other := env.login("other@example.com")

			rr := env.do(http.MethodPost, prefix, token, map[string]string{"name": "Apple"})
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			apple := decode[attrJSON](t, rr)

			rr = env.do(http.MethodPost, prefix+"/", token, map[string]string{"name": "Apple"})
			require.Equal(t, http.StatusOK, rr.Code, "existing name is returned")
			assert.Equal(t, apple, decode[attrJSON](t, rr))

			rr = env.do(http.MethodPost, prefix, token, map[string]string{"name": "Zucchini"})
			require.Equal(t, http.StatusCreated, rr.Code)
			zucchini := decode[attrJSON](t, rr)

			env.do(http.MethodPost, prefix, other, map[string]string{"name": "Hidden"})

			rr = env.do(http.MethodGet, prefix, token, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, []attrJSON{zucchini, apple}, decode[[]attrJSON](t, rr), "ordered by name descending")

			item := fmt.Sprintf("%s/%d", prefix, apple.ID)
			assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, item, other, nil).Code)
			assert.Equal(t, http.StatusNotFound, env.do(http.MethodPatch, item, other, map[string]string{"name": "x"}).Code)
			assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, item, other, nil).Code)

			rr = env.do(http.MethodPatch, item, token, map[string]string{"name": "Pear"})
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "Pear", decode[attrJSON](t, rr).Name)

			rr = env.do(http.MethodPut, item+"/", token, map[string]string{})
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, []string{"This field is required."}, decode[map[string][]string](t, rr)["name"])

			rr = env.do(http.MethodPut, item, token, map[string]string{"name": "Plum"})
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, attrJSON{ID: apple.ID, Name: "Plum"}, decode[attrJSON](t, rr))

			rr = env.do(http.MethodPost, prefix, token, map[string]string{"name": "   "})
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			rr = env.do(http.MethodDelete, item, token, nil)
			assert.Equal(t, http.StatusNoContent, rr.Code)
			assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, item, token, nil).Code)
		})
	}
}

func TestListTagsAssignedOnly(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("user@example.com")

	env.createRecipe(token, map[string]any{"title": "One", "tags": []map[string]string{{"name": "Shared"}}})
	env.createRecipe(token, map[string]any{"title": "Two", "tags": []map[string]string{{"name": "Shared"}}})
	rr := env.do(http.MethodPost, "/api/v1/tags", token, map[string]string{"name": "Unused"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/tags?assigned_only=1", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Shared"}, names(decode[[]attrJSON](t, rr)), "listed once despite two recipes")

	rr = env.do(http.MethodGet, "/api/v1/tags?assigned_only=0", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Unused", "Shared"}, names(decode[[]attrJSON](t, rr)))

	rr = env.do(http.MethodGet, "/api/v1/tags?assigned_only=yes", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "assigned_only")
}

func TestDeleteTagKeepsRecipe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("user@example.com")
	recipe := env.createRecipe(token, map[string]any{"tags": []map[string]string{{"name": "Gone"}}})

	rr := env.do(http.MethodDelete, fmt.Sprintf("/api/v1/tags/%d", recipe.Tags[0].ID), token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[recipeJSON](t, rr).Tags)

	var count int64
	env.db.Model(&models.Recipe{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
