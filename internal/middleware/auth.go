package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
	claimsKey   = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// OptionalAuth identifies the user when a token is sent and lets anonymous
// requests through. A token that is sent but invalid is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok && !authenticate(c, validator, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, validator TokenValidator, token string) bool {
	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		abortWithError(c, err)
		return false
	}

	// Store user info in context
	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
	c.Set(claimsKey, claims)
	return true
}

// bearerToken accepts both "Bearer <token>" and "Token <token>"
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "token":
		return parts[1], true
	}
	return "", false
}

// UserID returns the authenticated user's id, or 0 for anonymous requests
func UserID(c *gin.Context) uint {
	id, ok := c.Get(userIDKey)
	if !ok {
		return 0
	}
	uid, _ := id.(uint)
	return uid
}

// Claims returns the claims of the token used for this request
func Claims(c *gin.Context) *types.TokenClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*types.TokenClaims)
	return claims
}

// RequireUser rejects anonymous requests. It expects OptionalAuth to have
// run earlier in the chain.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == 0 {
			abortWithError(c, service.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
