package service_test

import (
	"context"
	"testing"

	"github.com/pageza/recipe-api/backend/internal/logging"
	"github.com/pageza/recipe-api/backend/internal/models"
	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/testhelpers"
	"github.com/pageza/recipe-api/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(attrs []models.Attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Name
	}
	return out
}

func TestAttributeListOrderedAndScoped(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")

	for _, kind := range []service.AttributeKind{service.TagKind, service.IngredientKind} {
		t.Run(kind.Name, func(t *testing.T) {
			svc := service.NewAttributeService(db, kind, logging.Discard())

			for _, name := range []string{"Kale", "Salt", "Vanilla"} {
				_, created, err := svc.Create(ctx, user.ID, name)
				require.NoError(t, err)
				assert.True(t, created)
			}
			_, _, err := svc.Create(ctx, other.ID, "Pepper")
			require.NoError(t, err)

			attrs, err := svc.List(ctx, user.ID, false)
			require.NoError(t, err)
			assert.Equal(t, []string{"Vanilla", "Salt", "Kale"}, names(attrs))
		})
	}
}

func TestAttributeCreateIsGetOrCreate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	svc := service.NewTagService(db, logging.Discard())

	first, created, err := svc.Create(ctx, user.ID, "Dessert")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.Create(ctx, user.ID, "Dessert")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	attrs, err := svc.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, attrs, 1)
}

func TestAttributeAssignedOnly(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	tags := service.NewTagService(db, logging.Discard())
	recipes := newRecipeService(t, db)

	_, _, err := tags.Create(ctx, user.ID, "Lunch")
	require.NoError(t, err)

	for _, title := range []string{"Eggs Benedict", "Herb Eggs"} {
		req := sampleRecipe(title)
		req.Tags = []types.AttributeRequest{{Name: "Breakfast"}}
		_, err := recipes.CreateRecipe(ctx, user.ID, req)
		require.NoError(t, err)
	}

	attrs, err := tags.List(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast"}, names(attrs), "assigned tags are listed once")

	attrs, err = tags.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch", "Breakfast"}, names(attrs))
}

func TestAttributeUpdate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	svc := service.NewIngredientService(db, logging.Discard())

	attr, _, err := svc.Create(ctx, user.ID, "Cilantro")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, attr.ID, types.UpdateAttributeRequest{Name: strPtr("Coriander")})
	require.NoError(t, err)
	assert.Equal(t, "Coriander", updated.Name)

	got, err := svc.Get(ctx, user.ID, attr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coriander", got.Name)

	unchanged, err := svc.Update(ctx, user.ID, attr.ID, types.UpdateAttributeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Coriander", unchanged.Name)

	_, err = svc.Update(ctx, other.ID, attr.ID, types.UpdateAttributeRequest{Name: strPtr("Stolen")})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAttributeDeleteDetachesFromRecipes(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	tags := service.NewTagService(db, logging.Discard())
	recipes := newRecipeService(t, db)

	req := sampleRecipe("Porridge")
	req.Tags = []types.AttributeRequest{{Name: "Breakfast"}, {Name: "Quick"}}
	recipe, err := recipes.CreateRecipe(ctx, user.ID, req)
	require.NoError(t, err)

	var breakfast models.Tag
	for _, tag := range recipe.Tags {
		if tag.Name == "Breakfast" {
			breakfast = tag
		}
	}
	require.NotZero(t, breakfast.ID)

	assert.ErrorIs(t, tags.Delete(ctx, other.ID, breakfast.ID), service.ErrNotFound)
	require.NoError(t, tags.Delete(ctx, user.ID, breakfast.ID))

	_, err = tags.Get(ctx, user.ID, breakfast.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	got, err := recipes.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quick"}, attributeNames(got.Tags))
}
