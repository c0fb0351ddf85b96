// Package domain holds bills of materials. A BOM describes what goes
// into producing one unit of an output product, wastage included.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/sahajbiz/voucherd/internal/voucher/calc"
)

type BOM struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index;uniqueIndex:ux_boms_org_output"`

	OutputProductID snowflake.ID `gorm:"column:output_product_id;not null;uniqueIndex:ux_boms_org_output"`
	Name            string       `gorm:"type:text;not null"`

	Components []BOMComponent `gorm:"foreignKey:BOMID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BOM) TableName() string { return "boms" }

type BOMComponent struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index"`
	BOMID snowflake.ID `gorm:"column:bom_id;not null;index"`

	Position int `gorm:"not null;default:0"`

	ComponentProductID snowflake.ID `gorm:"column:component_product_id;not null"`
	Quantity           float64      `gorm:"not null;default:0"`
	WastagePct         float64      `gorm:"column:wastage_pct;not null;default:0"`
	UnitCost           int64        `gorm:"column:unit_cost;not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BOMComponent) TableName() string { return "bom_components" }

// TotalQuantity is the component quantity inflated by wastage.
func (c BOMComponent) TotalQuantity() float64 {
	return calc.TotalQuantity(c.Quantity, c.WastagePct)
}

// Cost is the component cost in minor units, wastage included.
func (c BOMComponent) Cost() int64 {
	return calc.ComponentCost(c.Quantity, c.WastagePct, c.UnitCost)
}

// TotalCost sums component costs. Each component rounds once, so the
// total is the sum of already-rounded parts.
func (b BOM) TotalCost() int64 {
	var total int64
	for _, c := range b.Components {
		total += c.Cost()
	}
	return total
}
