package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "testpass123"

// PNGDataURI is a 1x1 transparent PNG encoded as a data URI
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// CreateTestUser inserts a user named username with TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTag inserts a tag whose name and slug are both slug
func CreateTestTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: slug, Color: "#49B64E", Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestIngredient inserts a catalogue ingredient
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// Amount pairs an ingredient with the amount used in a test recipe
type Amount struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateTestRecipe inserts a recipe directly, bypassing validation. pubDate
// orders recipes in listings.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, pubDate time.Time, tags []*models.Tag, amounts ...Amount) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/images/test.png",
		Text:        name + " text",
		CookingTime: 10,
		PubDate:     pubDate,
	}
	if err := db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}

	for _, tag := range tags {
		if err := db.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tag.ID).Error; err != nil {
			t.Fatalf("failed to tag test recipe: %v", err)
		}
	}
	for _, a := range amounts {
		row := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: a.Ingredient.ID, Amount: a.Amount}
		if err := db.Omit("Ingredient").Create(row).Error; err != nil {
			t.Fatalf("failed to add ingredient to test recipe: %v", err)
		}
	}
	return recipe
}

// AddToList inserts a (user, recipe) row into a favorites or cart table
func AddToList(t *testing.T, db *gorm.DB, table string, user *models.User, recipe *models.Recipe) {
	t.Helper()

	err := db.Exec("INSERT INTO "+table+" (user_id, recipe_id, created_at) VALUES (?, ?, ?)", user.ID, recipe.ID, time.Now()).Error
	if err != nil {
		t.Fatalf("failed to add recipe to %s: %v", table, err)
	}
}
