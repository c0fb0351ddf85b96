// Package calc is the line-total computation engine. All monetary inputs
// and outputs are int64 minor units (paise); intermediate arithmetic is
// decimal and rounding happens exactly once per result, half-up to the
// minor unit.
package calc

import (
	"github.com/shopspring/decimal"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
)

// DiscountMode selects which discount field applies to a line. The two
// are mutually exclusive.
type DiscountMode string

const (
	DiscountPercent DiscountMode = "percent"
	DiscountAmount  DiscountMode = "amount"
)

type LineInput struct {
	Quantity       float64
	UnitPrice      int64 // minor units
	DiscountMode   DiscountMode
	DiscountPct    float64
	DiscountAmount int64 // minor units
}

// Amount computes quantity x unitPrice less discount. Tax is not part of
// the line amount; see TaxAmounts. Negative results clamp to zero.
func Amount(in LineInput) int64 {
	gross := decimal.NewFromFloat(in.Quantity).Mul(decimal.NewFromInt(in.UnitPrice))

	var net decimal.Decimal
	switch in.DiscountMode {
	case DiscountAmount:
		net = gross.Sub(decimal.NewFromInt(in.DiscountAmount))
	default:
		fraction := decimal.NewFromFloat(in.DiscountPct).Div(decimal.NewFromInt(100))
		net = gross.Mul(decimal.NewFromInt(1).Sub(fraction))
	}

	return clamp(net.Round(0).IntPart())
}

// TaxBreakup is the informational per-line tax in minor units.
type TaxBreakup struct {
	CGST  int64
	SGST  int64
	IGST  int64
	Total int64
}

// TaxAmounts applies a resolved rate split to a line amount. Each
// component rounds independently so the stored values stay integer-safe.
func TaxAmounts(amount int64, split taxdomain.Split) TaxBreakup {
	breakup := TaxBreakup{
		CGST: taxAmount(amount, split.CGST),
		SGST: taxAmount(amount, split.SGST),
		IGST: taxAmount(amount, split.IGST),
	}
	breakup.Total = breakup.CGST + breakup.SGST + breakup.IGST
	return breakup
}

func taxAmount(amount int64, ratePct float64) int64 {
	if amount <= 0 || ratePct <= 0 {
		return 0
	}
	tax := decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(ratePct)).
		Div(decimal.NewFromInt(100))
	return clamp(tax.Round(0).IntPart())
}

// TotalQuantity grosses up a component quantity by its wastage percentage.
func TotalQuantity(quantity, wastagePct float64) float64 {
	total := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(wastagePct).Div(decimal.NewFromInt(100))))
	f, _ := total.Float64()
	return f
}

// ComponentCost prices a BOM component: quantity grossed up by wastage,
// times unit cost, rounded once.
func ComponentCost(quantity, wastagePct float64, unitCost int64) int64 {
	total := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(wastagePct).Div(decimal.NewFromInt(100)))).
		Mul(decimal.NewFromInt(unitCost))
	return clamp(total.Round(0).IntPart())
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
