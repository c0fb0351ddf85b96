package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// OnHand sums quantity across warehouses. Missing rows are zero.
	OnHand(ctx context.Context, orgID, productID snowflake.ID) (int64, error)
	Adjust(ctx context.Context, orgID, productID, warehouseID snowflake.ID, delta int64) (int64, error)
	DefaultWarehouse(ctx context.Context, orgID snowflake.ID) (*Warehouse, error)
	// BelowReorder returns products whose summed on-hand quantity is at or
	// below their reorder level, up to limit rows. orgID 0 scans all orgs.
	BelowReorder(ctx context.Context, orgID snowflake.ID, limit int) ([]ReorderCandidate, error)
}

type ReorderCandidate struct {
	OrgID        snowflake.ID
	ProductID    snowflake.ID
	ProductName  string
	OnHand       int64
	ReorderLevel int64
}
