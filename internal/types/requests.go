package types

import (
	"github.com/pageza/foodgram/backend/internal/validation"
)

// RegisterRequest represents the request body for creating a user
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest represents the request body for changing the password
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// RecipeRequest is the body of recipe create and update requests. Scalar
// fields are pointers so that an update can leave them unchanged; create
// requires all of them.
type RecipeRequest struct {
	Ingredients []validation.IngredientAmount `json:"ingredients" binding:"dive"`
	Tags        []uint                        `json:"tags"`
	Image       *string                       `json:"image"`
	Name        *string                       `json:"name" binding:"omitempty,max=200"`
	Text        *string                       `json:"text"`
	CookingTime *int                          `json:"cooking_time"`
}

// CreateTagRequest is used by the management CLI
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,hexcolor6"`
	Slug  string `json:"slug" binding:"required,max=50"`
}
