package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// AuthHandler issues and revokes tokens
type AuthHandler struct {
	authService  service.IAuthService
	loginLimiter *middleware.IPRateLimiter
}

func NewAuthHandler(authService service.IAuthService, loginLimiter *middleware.IPRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, loginLimiter: loginLimiter}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	token := router.Group("/auth/token")
	{
		login := []gin.HandlerFunc{h.Login}
		if h.loginLimiter != nil {
			login = append([]gin.HandlerFunc{h.loginLimiter.Middleware()}, login...)
		}
		token.POST("/login", login...)
		token.POST("/logout", middleware.RequireUser(), h.Logout)
	}
}

// Login exchanges email and password for a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

// Logout revokes the token used for the request
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
