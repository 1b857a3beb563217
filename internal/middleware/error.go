package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorHandler renders the last error a handler attached with c.Error and
// turns panics into 500 responses
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error."})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := Render(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(requestIDKey)),
			)
		}
		c.JSON(status, body)
	}
}

// Render maps a service error to its HTTP status and response body
func Render(err error) (int, interface{}) {
	var (
		verrs    validation.Errors
		conflict *service.ConflictError
		bad      *service.BadRequestError
	)

	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, verrs
	case errors.As(err, &conflict):
		return http.StatusBadRequest, gin.H{"errors": conflict.Message}
	case errors.As(err, &bad):
		return http.StatusBadRequest, gin.H{"errors": bad.Message}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, validation.New("non_field_errors", "Unable to log in with provided credentials.")
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: "Not found."}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Detail: "You do not have permission to perform this action."}
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Detail: "Invalid token."}
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Detail: "Authentication credentials were not provided."}
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error."}
	}
}

// abortWithError stops the chain and renders err immediately
func abortWithError(c *gin.Context, err error) {
	status, body := Render(err)
	c.AbortWithStatusJSON(status, body)
}
