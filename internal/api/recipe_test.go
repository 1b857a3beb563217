package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeAPIFixture struct {
	*testAPI
	author    *models.User
	reader    *models.User
	flour     *models.Ingredient
	sugar     *models.Ingredient
	breakfast *models.Tag
}

func setupRecipeAPI(t *testing.T) *recipeAPIFixture {
	a := setupTestAPI(t)
	return &recipeAPIFixture{
		testAPI:   a,
		author:    testhelpers.CreateTestUser(t, a.db, "chef"),
		reader:    testhelpers.CreateTestUser(t, a.db, "reader"),
		flour:     testhelpers.CreateTestIngredient(t, a.db, "flour", "g"),
		sugar:     testhelpers.CreateTestIngredient(t, a.db, "sugar", "g"),
		breakfast: testhelpers.CreateTestTag(t, a.db, "breakfast"),
	}
}

func (f *recipeAPIFixture) recipeBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"id": f.flour.ID, "amount": 200},
			{"id": f.sugar.ID, "amount": 50},
		},
		"tags":         []uint{f.breakfast.ID},
		"image":        testhelpers.PNGDataURI,
		"name":         name,
		"text":         "Mix and bake.",
		"cooking_time": 25,
	}
}

func TestRecipeCRUD(t *testing.T) {
	f := setupRecipeAPI(t)
	authorToken := f.token(f.author)

	rr := f.do(http.MethodPost, "/api/recipes", f.recipeBody("Pancakes"), authorToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[types.RecipeResponse](t, rr)
	assert.Equal(t, "Pancakes", created.Name)
	assert.Equal(t, "chef", created.Author.Username)
	assert.False(t, created.IsFavorited)
	require.Len(t, created.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredientResponse{ID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200}, created.Ingredients[0])

	path := fmt.Sprintf("/api/recipes/%d", created.ID)

	rr = f.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	update := map[string]interface{}{
		"ingredients": []map[string]interface{}{{"id": f.sugar.ID, "amount": 5}},
		"tags":        []uint{f.breakfast.ID},
		"name":        "Sweet pancakes",
	}
	rr = f.do(http.MethodPatch, path, update, f.token(f.reader))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPatch, path, update, authorToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[types.RecipeResponse](t, rr)
	assert.Equal(t, "Sweet pancakes", updated.Name)
	assert.Len(t, updated.Ingredients, 1)

	rr = f.do(http.MethodDelete, path, nil, f.token(f.reader))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodDelete, path, nil, authorToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setupRecipeAPI(t)
	token := f.token(f.author)

	body := f.recipeBody("Broken")
	body["cooking_time"] = 0
	rr := f.do(http.MethodPost, "/api/recipes", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "cooking_time")

	body = f.recipeBody("Broken")
	body["ingredients"] = []map[string]interface{}{}
	rr = f.do(http.MethodPost, "/api/recipes", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "ingredients")

	body = f.recipeBody("Broken")
	body["tags"] = []uint{f.breakfast.ID, f.breakfast.ID}
	rr = f.do(http.MethodPost, "/api/recipes", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "tags")

	// values past the column range are field errors, not database failures
	body = f.recipeBody("Broken")
	body["ingredients"] = []map[string]interface{}{{"id": f.flour.ID, "amount": 3_000_000_000}}
	rr = f.do(http.MethodPost, "/api/recipes", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "ingredients")

	body = f.recipeBody("Broken")
	body["cooking_time"] = 3_000_000_000
	rr = f.do(http.MethodPost, "/api/recipes", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string][]string](t, rr), "cooking_time")
}

func TestToggleFavoriteAndCart(t *testing.T) {
	f := setupRecipeAPI(t)
	recipe := testhelpers.CreateTestRecipe(t, f.db, f.author, "Soup", time.Now(), nil)
	token := f.token(f.reader)

	for _, list := range []string{"favorite", "shopping_cart"} {
		t.Run(list, func(t *testing.T) {
			path := fmt.Sprintf("/api/recipes/%d/%s", recipe.ID, list)

			rr := f.do(http.MethodPost, path, nil, token)
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			assert.Equal(t, types.NewShortRecipe(recipe), decode[types.ShortRecipeResponse](t, rr))

			rr = f.do(http.MethodPost, path, nil, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "recipe already added", decode[map[string]string](t, rr)["errors"])

			rr = f.do(http.MethodDelete, path, nil, token)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, recipe.ID, decode[types.ShortRecipeResponse](t, rr).ID)

			rr = f.do(http.MethodDelete, path, nil, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			rr = f.do(http.MethodPost, fmt.Sprintf("/api/recipes/999/%s", list), nil, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			rr = f.do(http.MethodDelete, fmt.Sprintf("/api/recipes/999/%s", list), nil, token)
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestListRecipesFlagsAndFilters(t *testing.T) {
	f := setupRecipeAPI(t)
	now := time.Now()
	lunch := testhelpers.CreateTestTag(t, f.db, "lunch")
	soup := testhelpers.CreateTestRecipe(t, f.db, f.author, "Soup", now.Add(-time.Hour), []*models.Tag{lunch})
	cake := testhelpers.CreateTestRecipe(t, f.db, f.author, "Cake", now, []*models.Tag{f.breakfast})
	testhelpers.AddToList(t, f.db, "favourite_recipes", f.reader, soup)
	token := f.token(f.reader)

	rr := f.do(http.MethodGet, "/api/recipes", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[types.Page[types.RecipeResponse]](t, rr)
	assert.EqualValues(t, 2, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, cake.ID, page.Results[0].ID)
	assert.False(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[1].IsFavorited)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)

	rr = f.do(http.MethodGet, "/api/recipes?is_favorited=1", nil, token)
	page = decode[types.Page[types.RecipeResponse]](t, rr)
	require.Len(t, page.Results, 1)
	assert.Equal(t, soup.ID, page.Results[0].ID)

	rr = f.do(http.MethodGet, "/api/recipes?is_favorited=1", nil, "")
	page = decode[types.Page[types.RecipeResponse]](t, rr)
	assert.Empty(t, page.Results)
	assert.EqualValues(t, 0, page.Count)

	rr = f.do(http.MethodGet, "/api/recipes?tags=breakfast", nil, "")
	page = decode[types.Page[types.RecipeResponse]](t, rr)
	require.Len(t, page.Results, 1)
	assert.Equal(t, cake.ID, page.Results[0].ID)

	rr = f.do(http.MethodGet, fmt.Sprintf("/api/recipes?author=%d&tags=lunch&tags=breakfast", f.author.ID), nil, "")
	page = decode[types.Page[types.RecipeResponse]](t, rr)
	assert.Len(t, page.Results, 2)

	rr = f.do(http.MethodGet, "/api/recipes?limit=1", nil, "")
	page = decode[types.Page[types.RecipeResponse]](t, rr)
	require.Len(t, page.Results, 1)
	require.NotNil(t, page.Next)
	assert.True(t, strings.HasSuffix(*page.Next, "/api/recipes?limit=1&page=2"), *page.Next)

	rr = f.do(http.MethodGet, "/api/recipes?limit=1&page=2", nil, "")
	page = decode[types.Page[types.RecipeResponse]](t, rr)
	require.Len(t, page.Results, 1)
	assert.Equal(t, soup.ID, page.Results[0].ID)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.True(t, strings.HasSuffix(*page.Previous, "/api/recipes?limit=1"), *page.Previous)

	rr = f.do(http.MethodGet, "/api/recipes?is_favorited=maybe", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	f := setupRecipeAPI(t)
	bread := testhelpers.CreateTestRecipe(t, f.db, f.author, "Bread", time.Now(), nil,
		testhelpers.Amount{Ingredient: f.flour, Amount: 200},
		testhelpers.Amount{Ingredient: f.sugar, Amount: 50},
	)
	cake := testhelpers.CreateTestRecipe(t, f.db, f.author, "Cake", time.Now(), nil,
		testhelpers.Amount{Ingredient: f.flour, Amount: 100},
	)
	testhelpers.AddToList(t, f.db, "shopping_carts", f.reader, bread)
	testhelpers.AddToList(t, f.db, "shopping_carts", f.reader, cake)
	token := f.token(f.reader)

	rr := f.do(http.MethodGet, "/api/recipes/download_shopping_cart?format=txt", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="shopping_cart.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "1. flour 300 g.\n2. sugar 50 g.\n", rr.Body.String())

	rr = f.do(http.MethodGet, "/api/recipes/download_shopping_cart", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF-"))

	// an empty cart still downloads a document
	rr = f.do(http.MethodGet, "/api/recipes/download_shopping_cart?format=pdf", nil, f.token(f.author))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF-"))

	rr = f.do(http.MethodGet, "/api/recipes/download_shopping_cart?format=docx", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
