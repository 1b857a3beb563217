package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// Subscription is a followed author with a preview of their recipes
type Subscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// FollowService manages subscriptions between users
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow subscribes userID to authorID and returns the author
func (s *FollowService) Follow(ctx context.Context, userID, authorID uint) (*models.User, error) {
	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("user")
			}
			return err
		}
		if userID == authorID {
			return validation.New("non_field_errors", "You cannot subscribe to yourself.")
		}

		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", userID, authorID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Message: "already subscribed"}
		}

		follow := &models.Follow{UserID: userID, AuthorID: authorID, CreatedAt: time.Now()}
		if err := tx.Omit("User", "Author").Create(follow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "already subscribed"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Unfollow removes the subscription of userID to authorID
func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.User
		if err := tx.First(&author, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("user")
			}
			return err
		}

		result := tx.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &BadRequestError{Message: "you are not subscribed to this user"}
		}
		return nil
	})
}

// IsSubscribed reports whether userID follows authorID. Anonymous users
// follow nobody.
func (s *FollowService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// Subscription loads one author with their newest recipes. A negative
// recipesLimit returns every recipe.
func (s *FollowService) Subscription(ctx context.Context, author *models.User, recipesLimit int) (*Subscription, error) {
	db := s.db.WithContext(ctx)

	sub := &Subscription{Author: *author}
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&sub.RecipesCount).Error; err != nil {
		return nil, err
	}

	query := db.Where("author_id = ?", author.ID).Order("pub_date DESC").Order("id DESC")
	if recipesLimit >= 0 {
		query = query.Limit(recipesLimit)
	}
	if err := query.Find(&sub.Recipes).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscriptions returns one page of the authors userID follows
func (s *FollowService) Subscriptions(ctx context.Context, userID uint, page types.Pagination, recipesLimit int) ([]Subscription, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	query := db.Model(&models.User{}).Where("id IN (?)", followed).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := query.Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	subs := make([]Subscription, 0, len(authors))
	for i := range authors {
		sub, err := s.Subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, nil
}
