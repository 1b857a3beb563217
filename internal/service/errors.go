package service

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrUnauthorized       = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ConflictError reports an attempt to create a row that already exists
// (favorite, cart entry, follow edge, user).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// BadRequestError is a domain-specific 400 that is not tied to a field,
// e.g. removing a recipe that is not in the list.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// NotFoundError wraps ErrNotFound with the kind of object that is missing.
func NotFoundError(what string) error {
	return &notFound{what: what}
}

type notFound struct{ what string }

func (e *notFound) Error() string { return e.what + " not found" }
func (e *notFound) Unwrap() error { return ErrNotFound }
