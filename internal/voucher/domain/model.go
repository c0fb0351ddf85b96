// Package domain contains voucher drafts and their line items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"github.com/sahajbiz/voucherd/internal/voucher/calc"
	"gorm.io/datatypes"
)

// VoucherType is the business document kind a draft will become.
type VoucherType string

const (
	TypeSalesInvoice  VoucherType = "sales_invoice"
	TypeSalesOrder    VoucherType = "sales_order"
	TypePurchaseBill  VoucherType = "purchase_bill"
	TypePurchaseOrder VoucherType = "purchase_order"
)

func (t VoucherType) Valid() bool {
	switch t {
	case TypeSalesInvoice, TypeSalesOrder, TypePurchaseBill, TypePurchaseOrder:
		return true
	default:
		return false
	}
}

// VoucherStatus is the draft lifecycle state.
type VoucherStatus string

const (
	StatusDraft     VoucherStatus = "DRAFT"
	StatusFinalized VoucherStatus = "FINALIZED"
	StatusVoid      VoucherStatus = "VOID"
)

// Voucher is a business document draft: header plus line items. All
// amounts are minor units.
type Voucher struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index"`

	Type   VoucherType   `gorm:"type:text;not null"`
	Status VoucherStatus `gorm:"type:text;not null;default:'DRAFT'"`
	Number string        `gorm:"type:text"`

	SupplyType    taxdomain.SupplyType `gorm:"column:supply_type;type:text;not null;default:'intrastate'"`
	PlaceOfSupply string               `gorm:"column:place_of_supply;type:text"`
	PartyName     string               `gorm:"column:party_name;type:text"`

	SubtotalAmount int64  `gorm:"column:subtotal_amount;not null;default:0"`
	TaxAmount      int64  `gorm:"column:tax_amount;not null;default:0"`
	TotalAmount    int64  `gorm:"column:total_amount;not null;default:0"`
	Currency       string `gorm:"type:text;not null;default:'INR'"`

	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	FinalizedAt *time.Time        `gorm:""`

	Lines []Line `gorm:"foreignKey:VoucherID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Voucher) TableName() string { return "vouchers" }

func (v *Voucher) IsFinal() bool {
	return v.Status != StatusDraft
}

// Line is one voucher row. Its ID is stable for the life of the draft so
// asynchronous stock results always land on the row that asked for them.
// Amount and the tax columns are derived; they are recomputed on every
// mutation and never written independently.
type Line struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;index"`
	VoucherID snowflake.ID `gorm:"column:voucher_id;not null;index"`

	Position int `gorm:"not null;default:0"`

	ProductID   *snowflake.ID `gorm:"column:product_id;index"`
	Description string        `gorm:"type:text"`
	Unit        string        `gorm:"type:text"`

	Quantity  float64 `gorm:"not null;default:0"`
	UnitPrice int64   `gorm:"column:unit_price;not null;default:0"`

	DiscountMode   calc.DiscountMode `gorm:"column:discount_mode;type:text;not null;default:'percent'"`
	DiscountPct    float64           `gorm:"column:discount_pct;not null;default:0"`
	DiscountAmount int64             `gorm:"column:discount_amount;not null;default:0"`

	GSTRate  float64 `gorm:"column:gst_rate;not null;default:0"`
	CGSTRate float64 `gorm:"column:cgst_rate;not null;default:0"`
	SGSTRate float64 `gorm:"column:sgst_rate;not null;default:0"`
	IGSTRate float64 `gorm:"column:igst_rate;not null;default:0"`

	Amount    int64 `gorm:"not null;default:0"`
	TaxAmount int64 `gorm:"column:tax_amount;not null;default:0"`

	CurrentStock int64  `gorm:"column:current_stock;not null;default:0"`
	ReorderLevel int64  `gorm:"column:reorder_level;not null;default:0"`
	StockLoading bool   `gorm:"column:stock_loading;not null;default:false"`
	LookupSeq    uint64 `gorm:"column:lookup_seq;not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Line) TableName() string { return "voucher_lines" }

// Recompute derives amount and tax from the line's own fields. Pure with
// respect to everything outside the line.
func (l *Line) Recompute() {
	l.Amount = calc.Amount(calc.LineInput{
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		DiscountMode:   l.DiscountMode,
		DiscountPct:    l.DiscountPct,
		DiscountAmount: l.DiscountAmount,
	})
	breakup := calc.TaxAmounts(l.Amount, taxdomain.Split{
		CGST: l.CGSTRate,
		SGST: l.SGSTRate,
		IGST: l.IGSTRate,
	})
	l.TaxAmount = breakup.Total
}

// ApplySplit stamps a resolved slab decomposition onto the line.
func (l *Line) ApplySplit(slab float64, split taxdomain.Split) {
	l.GSTRate = slab
	l.CGSTRate = split.CGST
	l.SGSTRate = split.SGST
	l.IGSTRate = split.IGST
}

// LowStock is a pure function of the line's stock fields.
func (l *Line) LowStock() bool {
	return stockdomain.IsLow(l.CurrentStock, l.ReorderLevel)
}
