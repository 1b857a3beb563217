package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// TagService reads and creates recipe tags
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// ListTags returns every tag ordered by name
func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("tag")
		}
		return nil, err
	}
	return &tag, nil
}

// CreateTag validates and stores a new tag
func (s *TagService) CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error) {
	if err := validation.ValidateColor(req.Color); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return nil, validation.New("non_field_errors", "Name and slug are required.")
	}

	tag := &models.Tag{
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToUpper(req.Color),
		Slug:  strings.TrimSpace(req.Slug),
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "tag with this name or slug already exists"}
		}
		return nil, err
	}
	return tag, nil
}

// IngredientService reads and imports the ingredient catalogue
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// ListIngredients returns ingredients whose name starts with prefix
// (case-sensitive), ordered by name
func (s *IngredientService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		// substr counts characters on both sqlite and postgres
		query = query.Where("substr(name, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
	}

	var ingredients []models.Ingredient
	if err := query.Order("name").Order("measurement_unit").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredient retrieves an ingredient by ID
func (s *IngredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("ingredient")
		}
		return nil, err
	}
	return &ingredient, nil
}

// BulkCreate inserts ingredients, skipping (name, unit) pairs that already
// exist. It returns the number of rows actually inserted.
func (s *IngredientService) BulkCreate(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&ingredients, 500)
	return result.RowsAffected, result.Error
}
