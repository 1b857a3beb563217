package service

import (
	"context"
	"sort"

	"gorm.io/gorm"
)

// CartLine is one ingredient amount taken from a recipe in a cart
type CartLine struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingItem is the summed amount of one (name, unit) pair
type ShoppingItem struct {
	Name  string `json:"name"`
	Unit  string `json:"measurement_unit"`
	Total int    `json:"total"`
}

// AggregateLines sums amounts per (name, unit) and orders the result by
// name, then unit. Same-named ingredients in different units stay apart.
func AggregateLines(lines []CartLine) []ShoppingItem {
	type key struct{ name, unit string }
	totals := make(map[key]int, len(lines))
	for _, l := range lines {
		totals[key{l.Name, l.Unit}] += l.Amount
	}

	items := make([]ShoppingItem, 0, len(totals))
	for k, total := range totals {
		items = append(items, ShoppingItem{Name: k.name, Unit: k.unit, Total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// ShoppingListService builds the combined ingredient list of a user's cart
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate returns the summed ingredients of every recipe in the cart of
// userID. Only recipes reachable through that user's cart contribute.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]ShoppingItem, error) {
	var lines []CartLine
	err := s.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return AggregateLines(lines), nil
}
