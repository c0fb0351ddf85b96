package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidGSTIN        = errors.New("invalid_gstin")
	ErrInvalidStateCode    = errors.New("invalid_state_code")
	ErrInvalidSlab         = errors.New("invalid_slab")
	ErrNotFound            = errors.New("not_found")
)
