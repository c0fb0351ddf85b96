// Package domain contains GST vocabulary and the org-scoped tax profile.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SupplyType classifies a voucher for tax splitting.
type SupplyType string

const (
	SupplyIntrastate SupplyType = "intrastate"
	SupplyInterstate SupplyType = "interstate"
)

func (s SupplyType) Valid() bool {
	return s == SupplyIntrastate || s == SupplyInterstate
}

// TaxProfile is the org's GST registration and defaults.
type TaxProfile struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;uniqueIndex"`

	GSTIN         string   `gorm:"type:text;not null"`
	HomeStateCode string   `gorm:"column:home_state_code;type:text;not null"`
	DefaultSlab   *float64 `gorm:"column:default_slab;type:numeric(5,2)"`

	IsEnabled bool `gorm:"column:is_enabled;not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxProfile) TableName() string { return "tax_profiles" }

func (t *TaxProfile) Validate() error {
	if len(t.GSTIN) != 15 {
		return ErrInvalidGSTIN
	}
	if len(t.HomeStateCode) != 2 {
		return ErrInvalidStateCode
	}
	if t.DefaultSlab != nil && !IsAcceptedSlab(*t.DefaultSlab) {
		return ErrInvalidSlab
	}
	return nil
}

// SupplyTypeFor derives the supply type from the org's home state and the
// voucher's place of supply. An unknown place of supply is intrastate.
func SupplyTypeFor(homeState, placeOfSupply string) SupplyType {
	if placeOfSupply == "" || placeOfSupply == homeState {
		return SupplyIntrastate
	}
	return SupplyInterstate
}
