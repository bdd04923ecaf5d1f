package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrOutOfStock         = errors.New("book is out of stock")
	ErrAlreadyReturned    = errors.New("borrow not found or already returned")
	ErrConstraint         = errors.New("constraint violation")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrEmptyQuery         = errors.New("query is required")
	ErrCreatorRequired    = errors.New("creator identity is required")
)
