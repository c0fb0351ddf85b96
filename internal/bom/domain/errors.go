package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidComponent    = errors.New("invalid_component")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidWastage      = errors.New("invalid_wastage")
	ErrDuplicateBOM        = errors.New("duplicate_bom")
	ErrNotFound            = errors.New("bom_not_found")
)
