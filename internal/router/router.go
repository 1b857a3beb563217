package router

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// SetupRouter builds the gin engine with the shared middleware chain and
// every API route
func SetupRouter(deps api.Dependencies) *gin.Engine {
	if deps.Config.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Log),
		middleware.ErrorHandler(deps.Log),
		middleware.CORS(deps.Config.CORSOrigins),
	)

	// uploaded images are served from disk unless they live in S3
	if deps.Config.StorageBackend == "local" && deps.Config.MediaURL != "" {
		router.Static(strings.TrimSuffix(deps.Config.MediaURL, "/"), deps.Config.MediaRoot)
	}

	api.RegisterRoutes(router, deps)
	return router
}
