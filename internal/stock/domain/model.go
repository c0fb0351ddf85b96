// Package domain contains stock levels and the lookup snapshot.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StockLevel is the persisted on-hand quantity per product and warehouse.
type StockLevel struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index;uniqueIndex:ux_stock_org_product_wh"`

	ProductID   snowflake.ID `gorm:"column:product_id;not null;index;uniqueIndex:ux_stock_org_product_wh"`
	WarehouseID snowflake.ID `gorm:"column:warehouse_id;not null;uniqueIndex:ux_stock_org_product_wh"`

	Quantity int64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StockLevel) TableName() string { return "stock_levels" }

// Warehouse is a stock location. A default warehouse is seeded per org.
type Warehouse struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index"`

	Name      string `gorm:"type:text;not null"`
	IsDefault bool   `gorm:"column:is_default;not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Warehouse) TableName() string { return "warehouses" }

// Snapshot is the ephemeral result of a lookup. It is owned by whoever
// asked; nothing here is persisted.
type Snapshot struct {
	ProductID    snowflake.ID `json:"product_id"`
	Quantity     int64        `json:"quantity"`
	ReorderLevel int64        `json:"reorder_level"`
	Low          bool         `json:"low"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// IsLow reports whether on-hand quantity sits at or below the reorder
// level. A zero reorder level never flags.
func IsLow(quantity, reorderLevel int64) bool {
	return reorderLevel > 0 && quantity <= reorderLevel
}
