package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	obsmetrics "github.com/sahajbiz/voucherd/internal/observability/metrics"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"github.com/sahajbiz/voucherd/internal/voucher/calc"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
	"github.com/sahajbiz/voucherd/pkg/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const stockLookupTimeout = 5 * time.Second

type ServiceParam struct {
	fx.In

	Repository voucherdomain.Repository
	Products   catalogdomain.Repository
	Stock      stockdomain.Service
	Resolver   taxdomain.Resolver
	Config     config.Config
	Clock      clock.Clock
	Metrics    *obsmetrics.Metrics
	GenID      *snowflake.Node
}

type service struct {
	repo     voucherdomain.Repository
	products catalogdomain.Repository
	stock    stockdomain.Service
	resolver taxdomain.Resolver
	cfg      config.Config
	clock    clock.Clock
	metrics  *obsmetrics.Metrics
	genID    *snowflake.Node
}

func NewService(p ServiceParam) voucherdomain.Service {
	return &service{
		repo:     p.Repository,
		products: p.Products,
		stock:    p.Stock,
		resolver: p.Resolver,
		cfg:      p.Config,
		clock:    p.Clock,
		metrics:  p.Metrics,
		genID:    p.GenID,
	}
}

func (s *service) Create(ctx context.Context, req voucherdomain.CreateRequest) (*voucherdomain.Response, error) {
	if req.OrgID == 0 {
		return nil, voucherdomain.ErrInvalidOrganization
	}
	if !req.Type.Valid() {
		return nil, voucherdomain.ErrInvalidType
	}

	supplyType, err := s.resolver.ResolveSupplyType(ctx, req.OrgID, strings.TrimSpace(req.PlaceOfSupply))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	voucher := &voucherdomain.Voucher{
		ID:            s.genID.Generate(),
		OrgID:         req.OrgID,
		Type:          req.Type,
		Status:        voucherdomain.StatusDraft,
		SupplyType:    supplyType,
		PlaceOfSupply: strings.TrimSpace(req.PlaceOfSupply),
		PartyName:     strings.TrimSpace(req.PartyName),
		Currency:      s.cfg.Currency,
		Metadata:      datatypes.JSONMap(req.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Drafts always start with one empty line; the minimum-one constraint
	// holds from birth.
	voucher.Lines = []voucherdomain.Line{s.emptyLine(voucher, 0, now)}

	if err := s.repo.Create(ctx, voucher); err != nil {
		return nil, err
	}
	return toResponse(voucher), nil
}

func (s *service) emptyLine(v *voucherdomain.Voucher, position int, now time.Time) voucherdomain.Line {
	return voucherdomain.Line{
		ID:           s.genID.Generate(),
		OrgID:        v.OrgID,
		VoucherID:    v.ID,
		Position:     position,
		DiscountMode: calc.DiscountPercent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *service) List(ctx context.Context, req voucherdomain.ListRequest) ([]voucherdomain.Response, error) {
	if req.OrgID == 0 {
		return nil, voucherdomain.ErrInvalidOrganization
	}
	items, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]voucherdomain.Response, 0, len(items))
	for i := range items {
		out = append(out, *toResponse(&items[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, orgID snowflake.ID, id string) (*voucherdomain.Response, error) {
	voucher, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(voucher), nil
}

func (s *service) AddLine(ctx context.Context, req voucherdomain.AddLineRequest) (*voucherdomain.Response, error) {
	voucher, err := s.load(ctx, req.OrgID, req.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher.IsFinal() {
		return nil, voucherdomain.ErrVoucherFinalized
	}

	line := s.emptyLine(voucher, len(voucher.Lines), s.clock.Now())
	if err := s.repo.CreateLine(ctx, &line); err != nil {
		return nil, err
	}
	return s.refresh(ctx, voucher)
}

func (s *service) RemoveLine(ctx context.Context, orgID snowflake.ID, voucherID, lineID string) (*voucherdomain.Response, error) {
	voucher, err := s.load(ctx, orgID, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.IsFinal() {
		return nil, voucherdomain.ErrVoucherFinalized
	}
	line, err := findLine(voucher, lineID)
	if err != nil {
		return nil, err
	}

	// A draft never drops below one line; removing the last one is a no-op.
	if len(voucher.Lines) == 1 {
		return toResponse(voucher), nil
	}

	if err := s.repo.DeleteLine(ctx, orgID, voucher.ID, line.ID); err != nil {
		return nil, err
	}
	return s.refresh(ctx, voucher)
}

func (s *service) UpdateLine(ctx context.Context, req voucherdomain.UpdateLineRequest) (*voucherdomain.Response, error) {
	voucher, err := s.load(ctx, req.OrgID, req.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher.IsFinal() {
		return nil, voucherdomain.ErrVoucherFinalized
	}
	line, err := findLine(voucher, req.LineID)
	if err != nil {
		return nil, err
	}

	// Field updates are last-write-wins, one field at a time.
	if req.Description != nil {
		line.Description = strings.TrimSpace(*req.Description)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, voucherdomain.ErrInvalidQuantity
		}
		line.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return nil, voucherdomain.ErrInvalidUnitPrice
		}
		line.UnitPrice = *req.UnitPrice
	}
	if req.DiscountMode != nil {
		switch *req.DiscountMode {
		case calc.DiscountPercent, calc.DiscountAmount:
			line.DiscountMode = *req.DiscountMode
		default:
			return nil, voucherdomain.ErrInvalidDiscount
		}
	}
	if req.DiscountPct != nil {
		if *req.DiscountPct < 0 || *req.DiscountPct > 100 {
			return nil, voucherdomain.ErrInvalidDiscount
		}
		line.DiscountPct = *req.DiscountPct
		line.DiscountMode = calc.DiscountPercent
		line.DiscountAmount = 0
	}
	if req.DiscountAmount != nil {
		if *req.DiscountAmount < 0 {
			return nil, voucherdomain.ErrInvalidDiscount
		}
		line.DiscountAmount = *req.DiscountAmount
		line.DiscountMode = calc.DiscountAmount
		line.DiscountPct = 0
	}
	if req.GSTRate != nil {
		slab := taxdomain.NearestSlab(*req.GSTRate)
		line.ApplySplit(slab, taxdomain.SplitRate(slab, voucher.SupplyType == taxdomain.SupplyIntrastate))
	}

	line.Recompute()
	line.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return s.refresh(ctx, voucher)
}

func (s *service) SelectProduct(ctx context.Context, req voucherdomain.SelectProductRequest) (*voucherdomain.Response, error) {
	voucher, err := s.load(ctx, req.OrgID, req.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher.IsFinal() {
		return nil, voucherdomain.ErrVoucherFinalized
	}
	line, err := findLine(voucher, req.LineID)
	if err != nil {
		return nil, err
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, voucherdomain.ErrInvalidID
	}
	product, err := s.products.FindByID(ctx, req.OrgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, voucherdomain.ErrMissingProduct
	}

	slab, err := s.resolver.ResolveSlab(ctx, req.OrgID, product.GSTRate)
	if err != nil {
		return nil, err
	}

	line.ProductID = &product.ID
	line.Description = product.Name
	line.Unit = product.Unit
	line.UnitPrice = product.UnitPrice
	if line.Quantity == 0 {
		line.Quantity = 1
	}
	line.ApplySplit(slab, taxdomain.SplitRate(slab, voucher.SupplyType == taxdomain.SupplyIntrastate))
	line.ReorderLevel = product.ReorderLevel

	line.Recompute()
	line.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}

	// The previous product's stock snapshot dies with the selection; the
	// bumped sequence makes any in-flight response for it stale.
	seq, err := s.repo.BeginStockLookup(ctx, line.ID)
	if err != nil {
		return nil, err
	}

	go s.fetchStock(context.WithoutCancel(ctx), req.OrgID, line.ID, product.ID, seq)

	return s.refresh(ctx, voucher)
}

// fetchStock resolves a stock lookup off the request path and lands the
// result on the line only if the line still waits for this sequence.
func (s *service) fetchStock(ctx context.Context, orgID, lineID, productID snowflake.ID, seq uint64) {
	ctx, cancel := context.WithTimeout(ctx, stockLookupTimeout)
	defer cancel()

	var quantity int64
	snapshot, err := s.stock.Lookup(ctx, orgID, productID)
	if err != nil {
		// Failed lookups read as zero stock; the draft keeps working.
		log.L(ctx).Warn("stock lookup failed",
			zap.String("line_id", lineID.String()),
			zap.Error(err),
		)
	} else if snapshot != nil {
		quantity = snapshot.Quantity
	}

	applied, err := s.repo.ApplyStockResult(ctx, lineID, seq, quantity)
	if err != nil {
		log.L(ctx).Error("stock result apply failed",
			zap.String("line_id", lineID.String()),
			zap.Error(err),
		)
		return
	}
	if !applied {
		s.metrics.RecordStaleLookupDrop(ctx)
	}
}

func (s *service) SetSupplyType(ctx context.Context, req voucherdomain.SetSupplyTypeRequest) (*voucherdomain.Response, error) {
	if !req.SupplyType.Valid() {
		return nil, voucherdomain.ErrInvalidSupplyType
	}
	voucher, err := s.load(ctx, req.OrgID, req.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher.IsFinal() {
		return nil, voucherdomain.ErrVoucherFinalized
	}
	if voucher.SupplyType == req.SupplyType {
		return toResponse(voucher), nil
	}

	voucher.SupplyType = req.SupplyType
	voucher.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateHeader(ctx, voucher); err != nil {
		return nil, err
	}

	// Re-split every line from the slab it already resolved to. The raw
	// product rate plays no part here, so toggling cannot drift.
	intrastate := req.SupplyType == taxdomain.SupplyIntrastate
	for i := range voucher.Lines {
		line := &voucher.Lines[i]
		line.ApplySplit(line.GSTRate, taxdomain.SplitRate(line.GSTRate, intrastate))
		line.Recompute()
		line.UpdatedAt = voucher.UpdatedAt
		if err := s.repo.UpdateLine(ctx, line); err != nil {
			return nil, err
		}
	}
	return s.refresh(ctx, voucher)
}

func (s *service) Totals(ctx context.Context, orgID snowflake.ID, id string) (*voucherdomain.TotalsResponse, error) {
	voucher, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	totals := &voucherdomain.TotalsResponse{}
	for i := range voucher.Lines {
		line := &voucher.Lines[i]
		breakup := calc.TaxAmounts(line.Amount, taxdomain.Split{
			CGST: line.CGSTRate,
			SGST: line.SGSTRate,
			IGST: line.IGSTRate,
		})
		totals.Subtotal += line.Amount
		totals.CGST += breakup.CGST
		totals.SGST += breakup.SGST
		totals.IGST += breakup.IGST
	}
	totals.Tax = totals.CGST + totals.SGST + totals.IGST
	totals.Total = totals.Subtotal + totals.Tax
	return totals, nil
}

func (s *service) Finalize(ctx context.Context, orgID snowflake.ID, id string) (*voucherdomain.Response, error) {
	voucher, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if voucher.Status == voucherdomain.StatusFinalized {
		return toResponse(voucher), nil
	}
	if voucher.IsFinal() {
		return nil, voucherdomain.ErrVoucherFinalized
	}

	for i := range voucher.Lines {
		line := &voucher.Lines[i]
		if line.ProductID == nil {
			return nil, voucherdomain.ErrMissingProduct
		}
		if line.Quantity <= 0 {
			return nil, voucherdomain.ErrInvalidQuantity
		}
	}

	now := s.clock.Now()
	voucher.Status = voucherdomain.StatusFinalized
	voucher.Number = numberPrefix(voucher.Type) + "-" + voucher.ID.String()
	voucher.FinalizedAt = &now
	voucher.UpdatedAt = now
	applyTotals(voucher)

	if err := s.repo.UpdateHeader(ctx, voucher); err != nil {
		return nil, err
	}
	s.metrics.RecordVoucherFinalized(ctx, string(voucher.Type))
	return toResponse(voucher), nil
}

func numberPrefix(t voucherdomain.VoucherType) string {
	switch t {
	case voucherdomain.TypeSalesInvoice:
		return "INV"
	case voucherdomain.TypeSalesOrder:
		return "SO"
	case voucherdomain.TypePurchaseBill:
		return "PB"
	case voucherdomain.TypePurchaseOrder:
		return "PO"
	default:
		return "VCH"
	}
}

func (s *service) load(ctx context.Context, orgID snowflake.ID, id string) (*voucherdomain.Voucher, error) {
	if orgID == 0 {
		return nil, voucherdomain.ErrInvalidOrganization
	}
	voucherID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, voucherdomain.ErrInvalidID
	}
	voucher, err := s.repo.FindByID(ctx, orgID, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, voucherdomain.ErrNotFound
	}
	return voucher, nil
}

// refresh recomputes header totals from current lines, persists them and
// returns the fresh draft.
func (s *service) refresh(ctx context.Context, voucher *voucherdomain.Voucher) (*voucherdomain.Response, error) {
	fresh, err := s.repo.FindByID(ctx, voucher.OrgID, voucher.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, voucherdomain.ErrNotFound
	}

	applyTotals(fresh)
	fresh.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateHeader(ctx, fresh); err != nil {
		return nil, err
	}
	return toResponse(fresh), nil
}

func applyTotals(v *voucherdomain.Voucher) {
	var subtotal, tax int64
	for i := range v.Lines {
		subtotal += v.Lines[i].Amount
		tax += v.Lines[i].TaxAmount
	}
	v.SubtotalAmount = subtotal
	v.TaxAmount = tax
	v.TotalAmount = subtotal + tax
}

func findLine(v *voucherdomain.Voucher, lineID string) (*voucherdomain.Line, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(lineID))
	if err != nil {
		return nil, voucherdomain.ErrInvalidID
	}
	for i := range v.Lines {
		if v.Lines[i].ID == id {
			return &v.Lines[i], nil
		}
	}
	return nil, voucherdomain.ErrLineNotFound
}

func toResponse(v *voucherdomain.Voucher) *voucherdomain.Response {
	resp := &voucherdomain.Response{
		ID:             v.ID.String(),
		OrgID:          v.OrgID.String(),
		Type:           v.Type,
		Status:         v.Status,
		Number:         v.Number,
		SupplyType:     v.SupplyType,
		PlaceOfSupply:  v.PlaceOfSupply,
		PartyName:      v.PartyName,
		Currency:       v.Currency,
		SubtotalAmount: v.SubtotalAmount,
		TaxAmount:      v.TaxAmount,
		TotalAmount:    v.TotalAmount,
		FinalizedAt:    v.FinalizedAt,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	resp.Lines = make([]voucherdomain.LineResponse, 0, len(v.Lines))
	for i := range v.Lines {
		line := &v.Lines[i]
		var productID *string
		if line.ProductID != nil {
			id := line.ProductID.String()
			productID = &id
		}
		resp.Lines = append(resp.Lines, voucherdomain.LineResponse{
			ID:             line.ID.String(),
			Position:       line.Position,
			ProductID:      productID,
			Description:    line.Description,
			Unit:           line.Unit,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			DiscountMode:   line.DiscountMode,
			DiscountPct:    line.DiscountPct,
			DiscountAmount: line.DiscountAmount,
			GSTRate:        line.GSTRate,
			CGSTRate:       line.CGSTRate,
			SGSTRate:       line.SGSTRate,
			IGSTRate:       line.IGSTRate,
			Amount:         line.Amount,
			TaxAmount:      line.TaxAmount,
			CurrentStock:   line.CurrentStock,
			ReorderLevel:   line.ReorderLevel,
			StockLoading:   line.StockLoading,
			LowStock:       line.LowStock(),
		})
	}
	return resp
}
