package service

import (
	"errors"
	"fmt"

	"github.com/d60-Lab/microblog/internal/repository"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrDuplicateKey      = repository.ErrDuplicateKey
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrValidation        = errors.New("validation failed")

	ErrFollowSelf       = fmt.Errorf("%w: cannot follow self", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrEmptyBody        = fmt.Errorf("%w: post body is empty", ErrValidation)
	ErrBodyTooLong      = fmt.Errorf("%w: post body exceeds 140 characters", ErrValidation)
)
