package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidType         = errors.New("invalid_voucher_type")
	ErrInvalidSupplyType   = errors.New("invalid_supply_type")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidUnitPrice    = errors.New("invalid_unit_price")
	ErrInvalidDiscount     = errors.New("invalid_discount")
	ErrMissingProduct      = errors.New("missing_product")
	ErrVoucherFinalized    = errors.New("voucher_finalized")
	ErrNotFound            = errors.New("not_found")
	ErrLineNotFound        = errors.New("line_not_found")
)
