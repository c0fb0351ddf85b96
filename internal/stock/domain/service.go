package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service answers on-hand quantity lookups and applies adjustments.
type Service interface {
	// Lookup returns the current on-hand quantity for a product summed
	// across warehouses. A missing stock row is zero quantity, not an
	// error; only infrastructure failures surface as errors.
	Lookup(ctx context.Context, orgID, productID snowflake.ID) (*Snapshot, error)
	Adjust(ctx context.Context, req AdjustRequest) (*Snapshot, error)
}

type AdjustRequest struct {
	OrgID       snowflake.ID `json:"-"`
	ProductID   string       `json:"product_id"`
	WarehouseID string       `json:"warehouse_id,omitempty"`
	Delta       int64        `json:"delta"`
	Reason      string       `json:"reason,omitempty"`
}
