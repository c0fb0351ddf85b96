// Package domain contains the product catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is a sellable or purchasable catalog entry. UnitPrice is in
// minor units (paise). GSTRate is the raw rate as entered; voucher lines
// snap it to a slab at selection time.
type Product struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index;uniqueIndex:ux_products_org_code"`

	Code string `gorm:"type:text;not null;uniqueIndex:ux_products_org_code"`
	Name string `gorm:"type:text;not null"`
	Unit string `gorm:"type:text;not null;default:'pcs'"`

	UnitPrice    int64    `gorm:"column:unit_price;not null;default:0"`
	GSTRate      *float64 `gorm:"column:gst_rate;type:numeric(5,2)"`
	ReorderLevel int64    `gorm:"column:reorder_level;not null;default:0"`
	HSNCode      string   `gorm:"column:hsn_code;type:text"`

	Active   bool              `gorm:"not null;default:true"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Validate() error {
	if p.OrgID == 0 {
		return ErrInvalidOrganization
	}
	if p.Code == "" {
		return ErrInvalidCode
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.UnitPrice < 0 {
		return ErrInvalidUnitPrice
	}
	if p.ReorderLevel < 0 {
		return ErrInvalidReorderLevel
	}
	return nil
}
