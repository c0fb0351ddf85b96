package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Resolver answers tax questions for a voucher context.
type Resolver interface {
	// ResolveSupplyType decides intra vs inter state for an org and place
	// of supply, consulting the org's tax profile when one exists.
	ResolveSupplyType(ctx context.Context, orgID snowflake.ID, placeOfSupply string) (SupplyType, error)
	// ResolveSlab snaps a raw product rate to a slab, honoring the org's
	// configured default when the rate is absent.
	ResolveSlab(ctx context.Context, orgID snowflake.ID, raw *float64) (float64, error)
}

// Service manages org tax profiles.
type Service interface {
	Get(ctx context.Context, orgID snowflake.ID) (*Response, error)
	Upsert(ctx context.Context, req UpsertRequest) (*Response, error)
}

type UpsertRequest struct {
	OrgID         snowflake.ID `json:"-"`
	GSTIN         string       `json:"gstin"`
	HomeStateCode string       `json:"home_state_code"`
	DefaultSlab   *float64     `json:"default_slab"`
	IsEnabled     *bool        `json:"is_enabled"`
}

type Response struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"org_id"`
	GSTIN         string    `json:"gstin"`
	HomeStateCode string    `json:"home_state_code"`
	DefaultSlab   *float64  `json:"default_slab,omitempty"`
	IsEnabled     bool      `json:"is_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
