package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// UserHandler serves accounts and subscriptions
type UserHandler struct {
	authService   service.IAuthService
	userService   service.IUserService
	followService service.IFollowService
	presenter     *Presenter
	paginator     Paginator
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, followService service.IFollowService, presenter *Presenter, paginator Paginator) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		followService: followService,
		presenter:     presenter,
		paginator:     paginator,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", middleware.RequireUser(), h.Me)
		users.POST("/set_password", middleware.RequireUser(), h.SetPassword)
		users.GET("/subscriptions", middleware.RequireUser(), h.Subscriptions)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", middleware.RequireUser(), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.RequireUser(), h.Unsubscribe)
	}
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	page := h.paginator.Parse(c)

	users, total, err := h.userService.ListUsers(ctx, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	results, err := h.presenter.Users(ctx, middleware.UserID(c), users)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, NewPage(c, page, total, results))
}

// Register creates an account
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderUser(c, id)
}

// Me returns the authenticated user
func (h *UserHandler) Me(c *gin.Context) {
	h.renderUser(c, middleware.UserID(c))
}

func (h *UserHandler) renderUser(c *gin.Context, id uint) {
	ctx := c.Request.Context()
	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	resp, err := h.presenter.User(ctx, middleware.UserID(c), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetPassword changes the authenticated user's password
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return
	}

	if err := h.authService.SetPassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the user follows
func (h *UserHandler) Subscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	page := h.paginator.Parse(c)

	limit, err := recipesLimit(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	subs, total, err := h.followService.Subscriptions(ctx, userID, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results := make([]types.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		resp, err := h.presenter.Subscription(ctx, userID, &subs[i])
		if err != nil {
			_ = c.Error(err)
			return
		}
		results = append(results, resp)
	}
	c.JSON(http.StatusOK, NewPage(c, page, total, results))
}

// Subscribe follows the author in the path
func (h *UserHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	authorID, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	limit, err := recipesLimit(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	author, err := h.followService.Follow(ctx, userID, authorID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sub, err := h.followService.Subscription(ctx, author, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	resp, err := h.presenter.Subscription(ctx, userID, sub)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Unsubscribe stops following the author in the path
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.followService.Unfollow(c.Request.Context(), middleware.UserID(c), authorID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads recipes_limit; absent means no limit
func recipesLimit(c *gin.Context) (int, error) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return -1, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, validation.New("recipes_limit", "A valid non-negative integer is required.")
	}
	return limit, nil
}
