package services

import (
	"errors"

	"storefront/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("already exists")
	ErrOutOfStock     = errors.New("insufficient stock")
	ErrInvalidProduct = domain.ErrInvalidProduct
)
