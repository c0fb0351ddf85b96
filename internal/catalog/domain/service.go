package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, orgID snowflake.ID, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

type CreateRequest struct {
	OrgID        snowflake.ID   `json:"-"`
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	UnitPrice    int64          `json:"unit_price"`
	GSTRate      *float64       `json:"gst_rate"`
	ReorderLevel int64          `json:"reorder_level"`
	HSNCode      string         `json:"hsn_code"`
	Active       *bool          `json:"active"`
	Metadata     map[string]any `json:"metadata"`
}

type ListRequest struct {
	OrgID   snowflake.ID
	Name    string
	Active  *bool
	SortBy  string
	OrderBy string
}

type UpdateRequest struct {
	OrgID        snowflake.ID `json:"-"`
	ID           string       `json:"id"`
	Name         *string      `json:"name,omitempty"`
	Unit         *string      `json:"unit,omitempty"`
	UnitPrice    *int64       `json:"unit_price,omitempty"`
	GSTRate      *float64     `json:"gst_rate,omitempty"`
	ReorderLevel *int64       `json:"reorder_level,omitempty"`
	HSNCode      *string      `json:"hsn_code,omitempty"`
	Active       *bool        `json:"active,omitempty"`
}

type Response struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	UnitPrice    int64     `json:"unit_price"`
	GSTRate      *float64  `json:"gst_rate,omitempty"`
	ReorderLevel int64     `json:"reorder_level"`
	HSNCode      string    `json:"hsn_code,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
