package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/sahajbiz/voucherd/internal/tax/domain"
	"github.com/sahajbiz/voucherd/internal/voucher/calc"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
)

type marotoProvider struct{}

func New() Provider {
	return &marotoProvider{}
}

var titles = map[voucherdomain.VoucherType]string{
	voucherdomain.TypeSalesInvoice:  "Tax Invoice",
	voucherdomain.TypeSalesOrder:    "Sales Order",
	voucherdomain.TypePurchaseBill:  "Purchase Bill",
	voucherdomain.TypePurchaseOrder: "Purchase Order",
}

func (p *marotoProvider) RenderVoucher(ctx context.Context, voucher *voucherdomain.Voucher) (io.Reader, error) {
	if voucher == nil {
		return nil, fmt.Errorf("voucher is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := titles[voucher.Type]
	if title == "" {
		title = "Voucher"
	}
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	number := voucher.Number
	if number == "" {
		number = "DRAFT"
	}
	m.AddRow(20,
		col.New(6).Add(
			text.New("Number: "+number, props.Text{Top: 0}),
			text.New("Date: "+voucher.CreatedAt.Format("02 Jan 2006"), props.Text{Top: 4}),
			text.New("Supply: "+string(voucher.SupplyType), props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Party: "+voucher.PartyName, props.Text{Top: 0}),
			text.New("Place of supply: "+voucher.PlaceOfSupply, props.Text{Top: 4}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "GST %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	var totals calc.TaxBreakup
	for _, line := range voucher.Lines {
		if line.ProductID == nil && line.Description == "" {
			continue
		}
		breakup := calc.TaxAmounts(line.Amount, domain.Split{
			CGST: line.CGSTRate,
			SGST: line.SGSTRate,
			IGST: line.IGSTRate,
		})
		totals.CGST += breakup.CGST
		totals.SGST += breakup.SGST
		totals.IGST += breakup.IGST

		m.AddRow(8,
			text.NewCol(4, line.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%.2f %s", line.Quantity, line.Unit), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(line.UnitPrice, voucher.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.1f", line.GSTRate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(line.Amount, voucher.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, money(voucher.SubtotalAmount, voucher.Currency), props.Text{Size: 9, Align: align.Right}),
	)
	if totals.IGST > 0 {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "IGST", props.Text{Size: 9}),
			text.NewCol(2, money(totals.IGST, voucher.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	} else {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "CGST", props.Text{Size: 9}),
			text.NewCol(2, money(totals.CGST, voucher.Currency), props.Text{Size: 9, Align: align.Right}),
		)
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "SGST", props.Text{Size: 9}),
			text.NewCol(2, money(totals.SGST, voucher.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, money(voucher.TotalAmount, voucher.Currency), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func money(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, currency, minor/100, minor%100)
}
