package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
}

// IUserService defines the interface for reading user accounts
type IUserService interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, page types.Pagination) ([]models.User, int64, error)
}

// IFollowService defines the interface for subscriptions between users
type IFollowService interface {
	Follow(ctx context.Context, userID, authorID uint) (*models.User, error)
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error)
	Subscription(ctx context.Context, author *models.User, recipesLimit int) (*Subscription, error)
	Subscriptions(ctx context.Context, userID uint, page types.Pagination, recipesLimit int) ([]Subscription, int64, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error)
}

// IIngredientService defines the interface for the ingredient catalogue
type IIngredientService interface {
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	BulkCreate(ctx context.Context, ingredients []models.Ingredient) (int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uint, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uint) error
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter, page types.Pagination) ([]models.Recipe, int64, error)
}

// IMembershipService defines the interface of a per-user recipe list
type IMembershipService interface {
	MembershipChecker
	Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	Remove(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
}

// IShoppingListService defines the interface for cart aggregation
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uint) ([]ShoppingItem, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ IFollowService       = (*FollowService)(nil)
	_ ITagService          = (*TagService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IMembershipService   = (*MembershipService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ ImageStore           = (*LocalImageStore)(nil)
	_ ImageStore           = (*S3ImageStore)(nil)
	_ TokenDenylist        = (*RedisTokenDenylist)(nil)
)
