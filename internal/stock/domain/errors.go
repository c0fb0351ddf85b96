package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidWarehouse    = errors.New("invalid_warehouse")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrNotFound            = errors.New("not_found")
)
