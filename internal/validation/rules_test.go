package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecipeComposition(t *testing.T) {
	ingredients := []IngredientAmount{{ID: 1, Amount: 200}, {ID: 2, Amount: 50}}
	tags := []uint{1, 2}

	gotIngredients, gotTags, err := ValidateRecipeComposition(ingredients, tags)
	require.NoError(t, err)
	assert.Equal(t, ingredients, gotIngredients)
	assert.Equal(t, tags, gotTags)
}

func TestValidateRecipeCompositionAcceptsMaxAmount(t *testing.T) {
	_, _, err := ValidateRecipeComposition([]IngredientAmount{{ID: 1, Amount: MaxAmount}}, []uint{1})
	assert.NoError(t, err)
}

func TestValidateRecipeCompositionRejects(t *testing.T) {
	tests := []struct {
		name        string
		ingredients []IngredientAmount
		tags        []uint
		field       string
	}{
		{"no ingredients", nil, []uint{1}, "ingredients"},
		{"no tags", []IngredientAmount{{ID: 1, Amount: 1}}, nil, "tags"},
		{"zero amount", []IngredientAmount{{ID: 1, Amount: 0}}, []uint{1}, "ingredients"},
		{"negative amount", []IngredientAmount{{ID: 1, Amount: -5}}, []uint{1}, "ingredients"},
		{"amount above limit", []IngredientAmount{{ID: 1, Amount: MaxAmount + 1}}, []uint{1}, "ingredients"},
		{"amount overflows column", []IngredientAmount{{ID: 1, Amount: 3_000_000_000}}, []uint{1}, "ingredients"},
		{"duplicate ingredient", []IngredientAmount{{ID: 3, Amount: 1}, {ID: 3, Amount: 2}}, []uint{1}, "ingredients"},
		{"duplicate tag", []IngredientAmount{{ID: 1, Amount: 1}}, []uint{4, 4}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateRecipeComposition(tt.ingredients, tt.tags)
			require.Error(t, err)
			var errs Errors
			require.ErrorAs(t, err, &errs)
			assert.NotEmpty(t, errs[tt.field])
		})
	}
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, ValidateColor("#49B64E"))
	assert.NoError(t, ValidateColor("#abcdef"))
	assert.Error(t, ValidateColor("#ZZZZZZ"))
	assert.Error(t, ValidateColor("#FFF"))
	assert.Error(t, ValidateColor("49B64E"))
	assert.Error(t, ValidateColor("#49B64E0"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("chef.anna+test@home-1_x"))
	assert.NoError(t, ValidateUsername("повар"))

	err := ValidateUsername("bad name!")
	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs["username"], 1)
	assert.Equal(t, `Forbidden characters: " !". Only letters, digits and . @ + - _ are allowed.`, errs["username"][0])
}

func TestValidateCookingTime(t *testing.T) {
	assert.NoError(t, ValidateCookingTime(1))
	assert.NoError(t, ValidateCookingTime(MaxCookingTime))
	assert.Error(t, ValidateCookingTime(0))

	var errs Errors
	require.ErrorAs(t, ValidateCookingTime(3_000_000_000), &errs)
	assert.NotEmpty(t, errs["cooking_time"])
}

func TestRegisterBindingsIsIdempotent(t *testing.T) {
	require.NoError(t, RegisterBindings())
	require.NoError(t, RegisterBindings())
}
