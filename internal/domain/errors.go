package domain

import "errors"

var (
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness violation (email or username taken).
	ErrConflict = errors.New("resource conflict")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing, malformed or expired credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a valid credential with insufficient privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrNotForSale indicates checkout was attempted on an unpriced story.
	ErrNotForSale = errors.New("story is not for sale")
)
