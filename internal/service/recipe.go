package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// RecipeFilter narrows a recipe listing. Membership filters are evaluated
// for UserID; a nil filter is not applied.
type RecipeFilter struct {
	UserID           uint
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// RecipeService handles recipe operations
type RecipeService struct {
	db        *gorm.DB
	images    ImageStore
	favorites *MembershipService
	cart      *MembershipService
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore, favorites, cart *MembershipService) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		favorites: favorites,
		cart:      cart,
	}
}

// CreateRecipe validates req and stores the recipe with its tags and
// ingredient amounts
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error) {
	errs := validation.Errors{}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		errs.Add("name", "This field is required.")
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		errs.Add("text", "This field is required.")
	}
	if req.Image == nil || *req.Image == "" {
		errs.Add("image", "This field is required.")
	}
	if req.CookingTime == nil {
		errs.Add("cooking_time", "This field is required.")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	if err := validation.ValidateCookingTime(*req.CookingTime); err != nil {
		return nil, err
	}

	ingredients, tagIDs, err := validation.ValidateRecipeComposition(req.Ingredients, req.Tags)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, *req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(*req.Name),
		Image:       imageURL,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
		PubDate:     time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, ingredients, tagIDs); err != nil {
			return err
		}
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		return writeComposition(tx, recipe.ID, ingredients, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces the tags and ingredients of a recipe and updates
// any scalar fields present in req. Only the author may update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uint, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	ingredients, tagIDs, err := validation.ValidateRecipeComposition(req.Ingredients, req.Tags)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validation.New("name", "This field may not be blank.")
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return nil, validation.New("text", "This field may not be blank.")
		}
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		if err := validation.ValidateCookingTime(*req.CookingTime); err != nil {
			return nil, err
		}
		updates["cooking_time"] = *req.CookingTime
	}
	if req.Image != nil && *req.Image != "" {
		imageURL, err := s.saveImage(ctx, *req.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, ingredients, tagIDs); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return writeComposition(tx, recipe.ID, ingredients, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes a recipe together with its links. Only the author
// may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM recipe_tags WHERE recipe_id = ?",
			"DELETE FROM recipe_ingredients WHERE recipe_id = ?",
			"DELETE FROM favourite_recipes WHERE recipe_id = ?",
			"DELETE FROM shopping_carts WHERE recipe_id = ?",
		} {
			if err := tx.Exec(stmt, recipe.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipe.ID).Error
	})
}

// GetRecipe retrieves a recipe by ID with its author, tags and ingredients
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("recipe")
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes matching filter, newest first,
// and the total number of matches
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page types.Pagination) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}

	for _, m := range []struct {
		flag *bool
		list *MembershipService
	}{
		{filter.IsFavorited, s.favorites},
		{filter.IsInShoppingCart, s.cart},
	} {
		if m.flag == nil || !*m.flag {
			continue
		}
		if filter.UserID == 0 {
			return []models.Recipe{}, 0, nil
		}
		query = query.Where("recipes.id IN (?)", m.list.subquery(db, filter.UserID))
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := preloadRecipe(query).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("recipe")
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func (s *RecipeService) saveImage(ctx context.Context, uri string) (string, error) {
	data, ext, err := DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	return s.images.Save(ctx, data, ext)
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// checkReferences makes sure every ingredient and tag id exists
func checkReferences(tx *gorm.DB, ingredients []validation.IngredientAmount, tagIDs []uint) error {
	ids := make([]uint, len(ingredients))
	for i, item := range ingredients {
		ids[i] = item.ID
	}

	errs := validation.Errors{}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		errs.Add("ingredients", "Unknown ingredient id.")
	}
	if err := tx.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(tagIDs) {
		errs.Add("tags", "Unknown tag id.")
	}
	return errs.OrNil()
}

func writeComposition(tx *gorm.DB, recipeID uint, ingredients []validation.IngredientAmount, tagIDs []uint) error {
	links := make([]map[string]interface{}, len(tagIDs))
	for i, id := range tagIDs {
		links[i] = map[string]interface{}{"recipe_id": recipeID, "tag_id": id}
	}
	if err := tx.Table("recipe_tags").Create(&links).Error; err != nil {
		return err
	}

	rows := make([]models.RecipeIngredient, len(ingredients))
	for i, item := range ingredients {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	return tx.Omit("Ingredient").Create(&rows).Error
}
