package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// recipes a user may publish per hour when Redis is available
const recipeCreationLimit = 50

// Dependencies are the resources the API is built from. Redis is optional;
// without it logout does not revoke tokens and recipe creation is not
// rate limited.
type Dependencies struct {
	DB           *gorm.DB
	Redis        *redis.Client
	Images       service.ImageStore
	Config       *config.Config
	Log          *zap.Logger
	LoginLimiter *middleware.IPRateLimiter
}

// NewLoginLimiter allows a burst of 10 login attempts per IP, refilled at
// one every 6 seconds
func NewLoginLimiter() *middleware.IPRateLimiter {
	return middleware.NewIPRateLimiter(rate.Limit(1.0/6), 10)
}

// RegisterRoutes wires services and handlers onto router under /api
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", healthCheck(deps.DB))
	router.GET("/api/health", healthCheck(deps.DB))

	var denylist service.TokenDenylist
	var createLimiter *middleware.RateLimiter
	if deps.Redis != nil {
		denylist = service.NewRedisTokenDenylist(deps.Redis)
		createLimiter = middleware.NewRecipeCreationRateLimiter(deps.Redis, recipeCreationLimit, deps.Log)
	}

	authService := service.NewAuthService(deps.DB, deps.Config.JWTSecret, deps.Config.TokenTTL, denylist)
	userService := service.NewUserService(deps.DB)
	followService := service.NewFollowService(deps.DB)
	favorites := service.NewFavoriteService(deps.DB)
	cart := service.NewShoppingCartService(deps.DB)
	recipeService := service.NewRecipeService(deps.DB, deps.Images, favorites, cart)

	presenter := NewPresenter(favorites, cart, followService)
	paginator := Paginator{DefaultLimit: deps.Config.PageSize, MaxLimit: deps.Config.MaxPageSize}

	v1 := router.Group("/api")
	v1.Use(middleware.OptionalAuth(authService))

	NewAuthHandler(authService, deps.LoginLimiter).RegisterRoutes(v1)
	NewUserHandler(authService, userService, followService, presenter, paginator).RegisterRoutes(v1)
	NewTagHandler(service.NewTagService(deps.DB)).RegisterRoutes(v1)
	NewIngredientHandler(service.NewIngredientService(deps.DB)).RegisterRoutes(v1)
	NewRecipeHandler(recipeService, favorites, cart, service.NewShoppingListService(deps.DB), presenter, paginator, createLimiter).RegisterRoutes(v1)
}

// healthCheck reports whether the database answers
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
