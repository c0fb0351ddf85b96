package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, orgID snowflake.ID) ([]Response, error)
	Get(ctx context.Context, orgID snowflake.ID, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, orgID snowflake.ID, id string) error
	Cost(ctx context.Context, orgID snowflake.ID, id string) (*CostResponse, error)
}

type ComponentInput struct {
	ComponentProductID string  `json:"component_product_id"`
	Quantity           float64 `json:"quantity"`
	WastagePct         float64 `json:"wastage_pct"`
	UnitCost           int64   `json:"unit_cost"`
}

type CreateRequest struct {
	OrgID           snowflake.ID     `json:"-"`
	OutputProductID string           `json:"output_product_id"`
	Name            string           `json:"name"`
	Components      []ComponentInput `json:"components"`
}

type UpdateRequest struct {
	OrgID      snowflake.ID     `json:"-"`
	ID         string           `json:"id"`
	Name       *string          `json:"name,omitempty"`
	Components []ComponentInput `json:"components,omitempty"`
}

type ComponentResponse struct {
	ID                 string  `json:"id"`
	ComponentProductID string  `json:"component_product_id"`
	Quantity           float64 `json:"quantity"`
	WastagePct         float64 `json:"wastage_pct"`
	UnitCost           int64   `json:"unit_cost"`
	TotalQuantity      float64 `json:"total_quantity"`
	Cost               int64   `json:"cost"`
}

type Response struct {
	ID              string              `json:"id"`
	OrgID           string              `json:"org_id"`
	OutputProductID string              `json:"output_product_id"`
	Name            string              `json:"name"`
	Components      []ComponentResponse `json:"components"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type CostResponse struct {
	BOMID      string              `json:"bom_id"`
	Components []ComponentResponse `json:"components"`
	TotalCost  int64               `json:"total_cost"`
	Currency   string              `json:"currency"`
}
