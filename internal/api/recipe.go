package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/export"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// toggleAction adds a recipe to or removes it from a user's list
type toggleAction struct {
	run    func(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	status int
}

// RecipeHandler serves recipes, the favorite and cart toggles and the
// shopping list download
type RecipeHandler struct {
	recipeService   service.IRecipeService
	favorites       service.IMembershipService
	cart            service.IMembershipService
	shoppingService service.IShoppingListService
	presenter       *Presenter
	paginator       Paginator
	createLimiter   *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	favorites, cart service.IMembershipService,
	shoppingService service.IShoppingListService,
	presenter *Presenter,
	paginator Paginator,
	createLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		favorites:       favorites,
		cart:            cart,
		shoppingService: shoppingService,
		presenter:       presenter,
		paginator:       paginator,
		createLimiter:   createLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireUser := middleware.RequireUser()
	favorite := h.toggle(h.favorites)
	shoppingCart := h.toggle(h.cart)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", requireUser, h.createLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", requireUser, h.DownloadShoppingCart)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", requireUser, h.UpdateRecipe)
		recipes.DELETE("/:id", requireUser, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireUser, favorite)
		recipes.DELETE("/:id/favorite", requireUser, favorite)
		recipes.POST("/:id/shopping_cart", requireUser, shoppingCart)
		recipes.DELETE("/:id/shopping_cart", requireUser, shoppingCart)
	}
}

// ListRecipes returns a filtered page of recipes, newest first
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	filter := service.RecipeFilter{
		UserID:   userID,
		TagSlugs: c.QueryArray("tags"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = c.Error(validation.New("author", "Select a valid choice."))
			return
		}
		filter.AuthorID = uint(author)
	}

	var err error
	if filter.IsFavorited, err = boolQuery(c, "is_favorited"); err != nil {
		_ = c.Error(err)
		return
	}
	if filter.IsInShoppingCart, err = boolQuery(c, "is_in_shopping_cart"); err != nil {
		_ = c.Error(err)
		return
	}

	page := h.paginator.Parse(c)
	recipes, total, err := h.recipeService.ListRecipes(ctx, filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results, err := h.presenter.Recipes(ctx, userID, recipes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, NewPage(c, page, total, results))
}

// GetRecipe returns one recipe
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

// CreateRecipe publishes a recipe authored by the current user
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe changes a recipe owned by the current user
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe owned by the current user
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// toggle builds the handler shared by POST and DELETE on a membership
// route. The HTTP method selects the action.
func (h *RecipeHandler) toggle(list service.IMembershipService) gin.HandlerFunc {
	actions := map[string]toggleAction{
		http.MethodPost:   {run: list.Add, status: http.StatusCreated},
		http.MethodDelete: {run: list.Remove, status: http.StatusOK},
	}

	return func(c *gin.Context) {
		action, ok := actions[c.Request.Method]
		if !ok {
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}

		id, err := idParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		recipe, err := action.run(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(action.status, types.NewShortRecipe(recipe))
	}
}

// DownloadShoppingCart sends the summed ingredients of the user's cart as
// an attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		_ = c.Error(validation.New("format", err.Error()))
		return
	}

	items, err := h.shoppingService.Aggregate(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, items); err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *RecipeHandler) renderRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	resp, err := h.presenter.Recipe(c.Request.Context(), middleware.UserID(c), recipe)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, resp)
}
