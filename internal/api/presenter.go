package api

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Presenter renders models relative to the requesting user
type Presenter struct {
	favorites service.MembershipChecker
	cart      service.MembershipChecker
	follows   service.IFollowService
}

func NewPresenter(favorites, cart service.MembershipChecker, follows service.IFollowService) *Presenter {
	return &Presenter{favorites: favorites, cart: cart, follows: follows}
}

// User renders u with is_subscribed computed for viewerID
func (p *Presenter) User(ctx context.Context, viewerID uint, u *models.User) (types.UserResponse, error) {
	subscribed, err := p.follows.IsSubscribed(ctx, viewerID, u.ID)
	if err != nil {
		return types.UserResponse{}, err
	}
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}, nil
}

// Users renders a list of users
func (p *Presenter) Users(ctx context.Context, viewerID uint, users []models.User) ([]types.UserResponse, error) {
	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		u, err := p.User(ctx, viewerID, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Recipe renders r with the viewer's favorite and cart flags
func (p *Presenter) Recipe(ctx context.Context, viewerID uint, r *models.Recipe) (types.RecipeResponse, error) {
	author, err := p.User(ctx, viewerID, &r.Author)
	if err != nil {
		return types.RecipeResponse{}, err
	}
	favorited, err := p.favorites.Contains(ctx, viewerID, r.ID)
	if err != nil {
		return types.RecipeResponse{}, err
	}
	inCart, err := p.cart.Contains(ctx, viewerID, r.ID)
	if err != nil {
		return types.RecipeResponse{}, err
	}

	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	ingredients := make([]types.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}, nil
}

// Recipes renders a list of recipes
func (p *Presenter) Recipes(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r, err := p.Recipe(ctx, viewerID, &recipes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Subscription renders a followed author with recipe previews
func (p *Presenter) Subscription(ctx context.Context, viewerID uint, sub *service.Subscription) (types.SubscriptionResponse, error) {
	author, err := p.User(ctx, viewerID, &sub.Author)
	if err != nil {
		return types.SubscriptionResponse{}, err
	}
	recipes := make([]types.ShortRecipeResponse, 0, len(sub.Recipes))
	for i := range sub.Recipes {
		recipes = append(recipes, types.NewShortRecipe(&sub.Recipes[i]))
	}
	return types.SubscriptionResponse{
		UserResponse: author,
		Recipes:      recipes,
		RecipesCount: sub.RecipesCount,
	}, nil
}
