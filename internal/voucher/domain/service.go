package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"github.com/sahajbiz/voucherd/internal/voucher/calc"
)

// Service owns the draft row model: add, remove and update lines, product
// selection, supply-type toggling, totals and finalization.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, orgID snowflake.ID, id string) (*Response, error)

	AddLine(ctx context.Context, req AddLineRequest) (*Response, error)
	RemoveLine(ctx context.Context, orgID snowflake.ID, voucherID, lineID string) (*Response, error)
	UpdateLine(ctx context.Context, req UpdateLineRequest) (*Response, error)
	SelectProduct(ctx context.Context, req SelectProductRequest) (*Response, error)

	SetSupplyType(ctx context.Context, req SetSupplyTypeRequest) (*Response, error)
	Totals(ctx context.Context, orgID snowflake.ID, id string) (*TotalsResponse, error)
	Finalize(ctx context.Context, orgID snowflake.ID, id string) (*Response, error)
}

type CreateRequest struct {
	OrgID         snowflake.ID   `json:"-"`
	Type          VoucherType    `json:"type"`
	PartyName     string         `json:"party_name"`
	PlaceOfSupply string         `json:"place_of_supply"`
	Metadata      map[string]any `json:"metadata"`
}

type ListRequest struct {
	OrgID   snowflake.ID
	Type    string
	Status  string
	SortBy  string
	OrderBy string
}

type AddLineRequest struct {
	OrgID     snowflake.ID `json:"-"`
	VoucherID string       `json:"-"`
}

type UpdateLineRequest struct {
	OrgID     snowflake.ID `json:"-"`
	VoucherID string       `json:"-"`
	LineID    string       `json:"-"`

	Description    *string            `json:"description,omitempty"`
	Quantity       *float64           `json:"quantity,omitempty"`
	UnitPrice      *int64             `json:"unit_price,omitempty"`
	DiscountMode   *calc.DiscountMode `json:"discount_mode,omitempty"`
	DiscountPct    *float64           `json:"discount_pct,omitempty"`
	DiscountAmount *int64             `json:"discount_amount,omitempty"`
	GSTRate        *float64           `json:"gst_rate,omitempty"`
}

type SelectProductRequest struct {
	OrgID     snowflake.ID `json:"-"`
	VoucherID string       `json:"-"`
	LineID    string       `json:"-"`
	ProductID string       `json:"product_id"`
}

type SetSupplyTypeRequest struct {
	OrgID      snowflake.ID         `json:"-"`
	VoucherID  string               `json:"-"`
	SupplyType taxdomain.SupplyType `json:"supply_type"`
}

type LineResponse struct {
	ID          string  `json:"id"`
	Position    int     `json:"position"`
	ProductID   *string `json:"product_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Unit        string  `json:"unit,omitempty"`

	Quantity       float64           `json:"quantity"`
	UnitPrice      int64             `json:"unit_price"`
	DiscountMode   calc.DiscountMode `json:"discount_mode"`
	DiscountPct    float64           `json:"discount_pct"`
	DiscountAmount int64             `json:"discount_amount"`

	GSTRate  float64 `json:"gst_rate"`
	CGSTRate float64 `json:"cgst_rate"`
	SGSTRate float64 `json:"sgst_rate"`
	IGSTRate float64 `json:"igst_rate"`

	Amount    int64 `json:"amount"`
	TaxAmount int64 `json:"tax_amount"`

	CurrentStock int64 `json:"current_stock"`
	ReorderLevel int64 `json:"reorder_level"`
	StockLoading bool  `json:"stock_loading"`
	LowStock     bool  `json:"low_stock"`
}

type Response struct {
	ID            string               `json:"id"`
	OrgID         string               `json:"org_id"`
	Type          VoucherType          `json:"type"`
	Status        VoucherStatus        `json:"status"`
	Number        string               `json:"number,omitempty"`
	SupplyType    taxdomain.SupplyType `json:"supply_type"`
	PlaceOfSupply string               `json:"place_of_supply,omitempty"`
	PartyName     string               `json:"party_name,omitempty"`
	Currency      string               `json:"currency"`

	SubtotalAmount int64 `json:"subtotal_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	TotalAmount    int64 `json:"total_amount"`

	Lines []LineResponse `json:"lines"`

	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TotalsResponse struct {
	Subtotal int64 `json:"subtotal"`
	CGST     int64 `json:"cgst"`
	SGST     int64 `json:"sgst"`
	IGST     int64 `json:"igst"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}
