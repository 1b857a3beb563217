package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

func TestTagService(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, &types.CreateTagRequest{Name: "Lunch", Color: "#49b64e", Slug: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, "#49B64E", tag.Color)

	_, err = svc.CreateTag(ctx, &types.CreateTagRequest{Name: "Lunch", Color: "#000000", Slug: "lunch"})
	var conflict *service.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.CreateTag(ctx, &types.CreateTagRequest{Name: "Dinner", Color: "#GGGGGG", Slug: "dinner"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "color")

	got, err := svc.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", got.Slug)

	_, err = svc.GetTag(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestIngredientService(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewIngredientService(db)
	ctx := context.Background()

	inserted, err := svc.BulkCreate(ctx, []models.Ingredient{
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "Sour cream", MeasurementUnit: "g"},
		{Name: "pepper", MeasurementUnit: "g"},
		{Name: "абрикосы", MeasurementUnit: "г"},
		{Name: "Абрикосовое варенье", MeasurementUnit: "г"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 6, inserted)

	inserted, err = svc.BulkCreate(ctx, []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, inserted)

	names := func(items []models.Ingredient) []string {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.Name + "/" + item.MeasurementUnit
		}
		return out
	}

	found, err := svc.ListIngredients(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sour cream/g"}, names(found))

	found, err = svc.ListIngredients(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"salt/g", "salt/pinch", "sugar/g"}, names(found))

	found, err = svc.ListIngredients(ctx, "абр")
	require.NoError(t, err)
	assert.Equal(t, []string{"абрикосы/г"}, names(found))

	found, err = svc.ListIngredients(ctx, "Абр")
	require.NoError(t, err)
	assert.Equal(t, []string{"Абрикосовое варенье/г"}, names(found))

	found, err = svc.ListIngredients(ctx, "sa")
	require.NoError(t, err)
	assert.Equal(t, []string{"salt/g", "salt/pinch"}, names(found))

	found, err = svc.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 7)

	_, err = svc.GetIngredient(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
