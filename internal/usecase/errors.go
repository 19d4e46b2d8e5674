package usecase

import (
	"errors"
	"fmt"
)

// Base sentinels. Every error a service hands back wraps one of these, so
// handlers can pick the HTTP status with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

// Precise variants for rules the API reports individually. Each wraps
// ErrValidation and stays matchable on its own.
var (
	ErrReservedUsername    = fmt.Errorf("%w: username \"me\" is reserved", ErrValidation)
	ErrUsernameTaken       = fmt.Errorf("%w: username already in use", ErrValidation)
	ErrEmailTaken          = fmt.Errorf("%w: email already in use", ErrValidation)
	ErrSlugTaken           = fmt.Errorf("%w: slug already in use", ErrValidation)
	ErrYearInFuture        = fmt.Errorf("%w: year must not be in the future", ErrValidation)
	ErrReviewExists        = fmt.Errorf("%w: title already reviewed by this author", ErrValidation)
	ErrBadConfirmationCode = fmt.Errorf("%w: confirmation code is invalid or expired", ErrValidation)
)
