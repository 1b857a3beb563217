package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// MembershipChecker reports whether a recipe belongs to a user's list
type MembershipChecker interface {
	Contains(ctx context.Context, userID, recipeID uint) (bool, error)
}

// MembershipService manages a per-user set of recipes stored in a
// (user_id, recipe_id) table. Favorites and the shopping cart are both
// instances of it.
type MembershipService struct {
	db    *gorm.DB
	table string
}

// NewFavoriteService returns the favorites list
func NewFavoriteService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db, table: "favourite_recipes"}
}

// NewShoppingCartService returns the shopping cart list
func NewShoppingCartService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db, table: "shopping_carts"}
}

// Add puts recipeID into the user's list and returns the recipe
func (s *MembershipService) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &BadRequestError{Message: "recipe does not exist"}
			}
			return err
		}

		exists, err := s.contains(tx, userID, recipeID)
		if err != nil {
			return err
		}
		if exists {
			return &ConflictError{Message: "recipe already added"}
		}

		row := map[string]interface{}{
			"user_id":    userID,
			"recipe_id":  recipeID,
			"created_at": time.Now(),
		}
		if err := tx.Table(s.table).Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "recipe already added"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Remove takes recipeID out of the user's list and returns the recipe
func (s *MembershipService) Remove(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("recipe")
			}
			return err
		}

		result := tx.Exec("DELETE FROM "+s.table+" WHERE user_id = ? AND recipe_id = ?", userID, recipeID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &BadRequestError{Message: "recipe is not in the list"}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Contains implements MembershipChecker. Anonymous users (id 0) have
// empty lists.
func (s *MembershipService) Contains(ctx context.Context, userID, recipeID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.contains(s.db.WithContext(ctx), userID, recipeID)
}

func (s *MembershipService) contains(db *gorm.DB, userID, recipeID uint) (bool, error) {
	var count int64
	err := db.Table(s.table).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// subquery selects the recipe ids in the user's list
func (s *MembershipService) subquery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Table(s.table).Select("recipe_id").Where("user_id = ?", userID)
}
