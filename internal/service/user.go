package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService reads user accounts
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("user")
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by id
func (s *UserService) ListUsers(ctx context.Context, page types.Pagination) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.User{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("id").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
