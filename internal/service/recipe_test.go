package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

type recipeFixture struct {
	db        *gorm.DB
	svc       *service.RecipeService
	favorites *service.MembershipService
	cart      *service.MembershipService
	author    *models.User
	flour     *models.Ingredient
	sugar     *models.Ingredient
	breakfast *models.Tag
	dinner    *models.Tag
}

func setupRecipeTest(t *testing.T) *recipeFixture {
	db := testhelpers.SetupTestDatabase(t)
	favorites := service.NewFavoriteService(db)
	cart := service.NewShoppingCartService(db)
	images := service.NewLocalImageStore(t.TempDir(), "/media/")

	return &recipeFixture{
		db:        db,
		svc:       service.NewRecipeService(db, images, favorites, cart),
		favorites: favorites,
		cart:      cart,
		author:    testhelpers.CreateTestUser(t, db, "chef"),
		flour:     testhelpers.CreateTestIngredient(t, db, "flour", "g"),
		sugar:     testhelpers.CreateTestIngredient(t, db, "sugar", "g"),
		breakfast: testhelpers.CreateTestTag(t, db, "breakfast"),
		dinner:    testhelpers.CreateTestTag(t, db, "dinner"),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *recipeFixture) request(name string) *types.RecipeRequest {
	return &types.RecipeRequest{
		Ingredients: []validation.IngredientAmount{
			{ID: f.flour.ID, Amount: 200},
			{ID: f.sugar.ID, Amount: 50},
		},
		Tags:        []uint{f.breakfast.ID},
		Image:       ptr(testhelpers.PNGDataURI),
		Name:        ptr(name),
		Text:        ptr("Mix and bake."),
		CookingTime: ptr(30),
	}
}

func TestRecipeService_Create(t *testing.T) {
	f := setupRecipeTest(t)

	recipe, err := f.svc.CreateRecipe(context.Background(), f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	assert.Contains(t, recipe.Image, "/media/recipes/images/")
	assert.True(t, len(recipe.Image) > len("/media/recipes/images/"))
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "flour", recipe.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)
	assert.Equal(t, "sugar", recipe.Ingredients[1].Ingredient.Name)
}

func TestRecipeService_CreateValidation(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*types.RecipeRequest)
		field  string
	}{
		{"missing name", func(r *types.RecipeRequest) { r.Name = nil }, "name"},
		{"missing image", func(r *types.RecipeRequest) { r.Image = nil }, "image"},
		{"bad image", func(r *types.RecipeRequest) { r.Image = ptr("not-an-image") }, "image"},
		{"zero cooking time", func(r *types.RecipeRequest) { r.CookingTime = ptr(0) }, "cooking_time"},
		{"no ingredients", func(r *types.RecipeRequest) { r.Ingredients = nil }, "ingredients"},
		{"zero amount", func(r *types.RecipeRequest) { r.Ingredients[0].Amount = 0 }, "ingredients"},
		{"duplicate ingredient", func(r *types.RecipeRequest) { r.Ingredients[1].ID = r.Ingredients[0].ID }, "ingredients"},
		{"unknown ingredient", func(r *types.RecipeRequest) { r.Ingredients[1].ID = 999 }, "ingredients"},
		{"no tags", func(r *types.RecipeRequest) { r.Tags = nil }, "tags"},
		{"duplicate tag", func(r *types.RecipeRequest) { r.Tags = []uint{f.breakfast.ID, f.breakfast.ID} }, "tags"},
		{"unknown tag", func(r *types.RecipeRequest) { r.Tags = []uint{999} }, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request("Invalid")
			tt.modify(req)

			_, err := f.svc.CreateRecipe(ctx, f.author.ID, req)
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeService_Update(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)

	update := &types.RecipeRequest{
		Ingredients: []validation.IngredientAmount{{ID: f.sugar.ID, Amount: 10}},
		Tags:        []uint{f.dinner.ID},
		Name:        ptr("Sweet pancakes"),
	}
	updated, err := f.svc.UpdateRecipe(ctx, f.author.ID, recipe.ID, update)
	require.NoError(t, err)

	assert.Equal(t, "Sweet pancakes", updated.Name)
	assert.Equal(t, recipe.Image, updated.Image)
	assert.Equal(t, 30, updated.CookingTime)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 10, updated.Ingredients[0].Amount)

	stranger := testhelpers.CreateTestUser(t, f.db, "stranger")
	_, err = f.svc.UpdateRecipe(ctx, stranger.ID, recipe.ID, update)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.svc.UpdateRecipe(ctx, f.author.ID, 999, update)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecipeService_DeleteCascades(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)
	_, err = f.favorites.Add(ctx, f.author.ID, recipe.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, f.author.ID, recipe.ID)
	require.NoError(t, err)

	stranger := testhelpers.CreateTestUser(t, f.db, "stranger")
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, stranger.ID, recipe.ID), service.ErrForbidden)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.author.ID, recipe.ID))

	_, err = f.svc.GetRecipe(ctx, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	for _, table := range []string{"recipe_tags", "recipe_ingredients", "favourite_recipes", "shopping_carts"} {
		var count int64
		require.NoError(t, f.db.Table(table).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
		assert.Zero(t, count, table)
	}
}

func TestRecipeService_List(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()
	other := testhelpers.CreateTestUser(t, f.db, "other")
	now := time.Now()

	oldest := testhelpers.CreateTestRecipe(t, f.db, f.author, "Oldest", now.Add(-2*time.Hour), []*models.Tag{f.breakfast})
	middle := testhelpers.CreateTestRecipe(t, f.db, other, "Middle", now.Add(-time.Hour), []*models.Tag{f.dinner})
	newest := testhelpers.CreateTestRecipe(t, f.db, f.author, "Newest", now, []*models.Tag{f.breakfast, f.dinner})

	testhelpers.AddToList(t, f.db, "favourite_recipes", other, oldest)
	testhelpers.AddToList(t, f.db, "shopping_carts", other, newest)

	ids := func(recipes []models.Recipe) []uint {
		out := make([]uint, len(recipes))
		for i, r := range recipes {
			out[i] = r.ID
		}
		return out
	}
	page := types.Pagination{Page: 1, Limit: 10}

	tests := []struct {
		name   string
		filter service.RecipeFilter
		want   []uint
	}{
		{"all newest first", service.RecipeFilter{}, []uint{newest.ID, middle.ID, oldest.ID}},
		{"by author", service.RecipeFilter{AuthorID: f.author.ID}, []uint{newest.ID, oldest.ID}},
		{"by tag", service.RecipeFilter{TagSlugs: []string{"dinner"}}, []uint{newest.ID, middle.ID}},
		{"any of tags", service.RecipeFilter{TagSlugs: []string{"dinner", "breakfast"}}, []uint{newest.ID, middle.ID, oldest.ID}},
		{"favorited", service.RecipeFilter{UserID: other.ID, IsFavorited: ptr(true)}, []uint{oldest.ID}},
		{"favorited false is ignored", service.RecipeFilter{UserID: other.ID, IsFavorited: ptr(false)}, []uint{newest.ID, middle.ID, oldest.ID}},
		{"in cart", service.RecipeFilter{UserID: other.ID, IsInShoppingCart: ptr(true)}, []uint{newest.ID}},
		{"anonymous favorited", service.RecipeFilter{IsFavorited: ptr(true)}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, total, err := f.svc.ListRecipes(ctx, tt.filter, page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(recipes))
			assert.EqualValues(t, len(tt.want), total)
		})
	}

	recipes, total, err := f.svc.ListRecipes(ctx, service.RecipeFilter{}, types.Pagination{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uint{oldest.ID}, ids(recipes))
}
