package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	catalogrepository "github.com/sahajbiz/voucherd/internal/catalog/repository"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
	voucherrepository "github.com/sahajbiz/voucherd/internal/voucher/repository"
)

// stubStock serves canned quantities and can hold a lookup open until
// released, which lets tests race a slow response against a fast one.
type stubStock struct {
	mu         sync.Mutex
	quantities map[snowflake.ID]int64
	gates      map[snowflake.ID]chan struct{}
}

func newStubStock() *stubStock {
	return &stubStock{
		quantities: make(map[snowflake.ID]int64),
		gates:      make(map[snowflake.ID]chan struct{}),
	}
}

func (s *stubStock) set(productID snowflake.ID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantities[productID] = quantity
}

func (s *stubStock) hold(productID snowflake.ID) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[productID] = gate
	return gate
}

func (s *stubStock) Lookup(ctx context.Context, orgID, productID snowflake.ID) (*stockdomain.Snapshot, error) {
	s.mu.Lock()
	gate := s.gates[productID]
	quantity := s.quantities[productID]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &stockdomain.Snapshot{ProductID: productID, Quantity: quantity}, nil
}

func (s *stubStock) Adjust(ctx context.Context, req stockdomain.AdjustRequest) (*stockdomain.Snapshot, error) {
	return nil, nil
}

type stubResolver struct {
	homeState string
}

func (r stubResolver) ResolveSupplyType(ctx context.Context, orgID snowflake.ID, placeOfSupply string) (taxdomain.SupplyType, error) {
	return taxdomain.SupplyTypeFor(r.homeState, placeOfSupply), nil
}

func (r stubResolver) ResolveSlab(ctx context.Context, orgID snowflake.ID, raw *float64) (float64, error) {
	if raw != nil {
		return taxdomain.NearestSlab(*raw), nil
	}
	return taxdomain.DefaultSlab, nil
}

type fixture struct {
	svc   voucherdomain.Service
	stock *stubStock
	conn  *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.Product{},
		&voucherdomain.Voucher{},
		&voucherdomain.Line{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	stock := newStubStock()
	svc := NewService(ServiceParam{
		Repository: voucherrepository.NewRepository(conn),
		Products:   catalogrepository.NewRepository(conn),
		Stock:      stock,
		Resolver:   stubResolver{homeState: "27"},
		Config:     config.Config{Currency: "INR", HomeStateCode: "27"},
		Clock:      clock.NewFakeClock(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)),
		GenID:      node,
	})

	return &fixture{svc: svc, stock: stock, conn: conn, node: node, orgID: node.Generate()}
}

func (f *fixture) product(t *testing.T, code string, unitPrice int64, gstRate *float64) snowflake.ID {
	t.Helper()
	p := catalogdomain.Product{
		ID:        f.node.Generate(),
		OrgID:     f.orgID,
		Code:      code,
		Name:      code,
		Unit:      "pcs",
		UnitPrice: unitPrice,
		GSTRate:   gstRate,
		Active:    true,
	}
	require.NoError(t, f.conn.Create(&p).Error)
	return p.ID
}

func (f *fixture) draft(t *testing.T) *voucherdomain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), voucherdomain.CreateRequest{
		OrgID:     f.orgID,
		Type:      voucherdomain.TypeSalesInvoice,
		PartyName: "Acme Traders",
	})
	require.NoError(t, err)
	return resp
}

func f64(v float64) *float64 { return &v }

func TestCreateStartsWithOneEmptyLine(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t)

	require.Len(t, draft.Lines, 1)
	assert.Nil(t, draft.Lines[0].ProductID)
	assert.Equal(t, voucherdomain.StatusDraft, draft.Status)
	assert.Equal(t, taxdomain.SupplyIntrastate, draft.SupplyType)
}

func TestRemoveLastLineIsNoOp(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t)

	resp, err := f.svc.RemoveLine(context.Background(), f.orgID, draft.ID, draft.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, draft.Lines[0].ID, resp.Lines[0].ID)
}

func TestAddAndRemoveLines(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t)

	resp, err := f.svc.AddLine(context.Background(), voucherdomain.AddLineRequest{
		OrgID: f.orgID, VoucherID: draft.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)

	resp, err = f.svc.RemoveLine(context.Background(), f.orgID, draft.ID, resp.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
}

func TestLineAmountWithPercentDiscount(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(18))
	draft := f.draft(t)

	_, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)

	resp, err := f.svc.UpdateLine(context.Background(), voucherdomain.UpdateLineRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		Quantity:    f64(3),
		DiscountPct: f64(10),
	})
	require.NoError(t, err)

	// 3 x 100.00 less 10% = 270.00
	line := resp.Lines[0]
	assert.Equal(t, int64(27000), line.Amount)
	assert.Equal(t, int64(27000), resp.SubtotalAmount)
}

func TestSelectProductResolvesSlabAndSplit(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(17.2))
	draft := f.draft(t)

	resp, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)

	line := resp.Lines[0]
	assert.Equal(t, float64(18), line.GSTRate)
	assert.Equal(t, float64(9), line.CGSTRate)
	assert.Equal(t, float64(9), line.SGSTRate)
	assert.Equal(t, float64(0), line.IGSTRate)
	assert.Equal(t, float64(1), line.Quantity)
	assert.Equal(t, int64(10000), line.UnitPrice)
}

func TestSelectProductLoadsStockAsync(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(18))
	f.stock.set(productID, 42)
	draft := f.draft(t)

	resp, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)
	assert.True(t, resp.Lines[0].StockLoading)

	assert.Eventually(t, func() bool {
		got, err := f.svc.Get(context.Background(), f.orgID, draft.ID)
		if err != nil {
			return false
		}
		line := got.Lines[0]
		return !line.StockLoading && line.CurrentStock == 42
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSlowLookupForPreviousProductIsDropped(t *testing.T) {
	f := newFixture(t)
	productA := f.product(t, "slow", 10000, f64(18))
	productB := f.product(t, "fast", 20000, f64(18))
	f.stock.set(productA, 7)
	f.stock.set(productB, 99)
	gate := f.stock.hold(productA)
	draft := f.draft(t)

	_, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productA.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productB.String(),
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, err := f.svc.Get(context.Background(), f.orgID, draft.ID)
		if err != nil {
			return false
		}
		return !got.Lines[0].StockLoading && got.Lines[0].CurrentStock == 99
	}, 2*time.Second, 10*time.Millisecond)

	// Release the slow lookup for the old product; its result must not land.
	close(gate)
	time.Sleep(100 * time.Millisecond)

	got, err := f.svc.Get(context.Background(), f.orgID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Lines[0].CurrentStock)
	assert.False(t, got.Lines[0].StockLoading)
}

func TestFieldUpdateKeepsAppliedStock(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(18))
	f.stock.set(productID, 42)
	gate := f.stock.hold(productID)
	draft := f.draft(t)

	resp, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)
	lineID, err := snowflake.ParseString(resp.Lines[0].ID)
	require.NoError(t, err)

	// A concurrent field update loads the line while the lookup is still
	// in flight, so its snapshot carries zero stock and the loading flag.
	var stale voucherdomain.Line
	require.NoError(t, f.conn.First(&stale, "id = ?", lineID).Error)
	require.True(t, stale.StockLoading)
	require.Equal(t, int64(0), stale.CurrentStock)

	close(gate)
	require.Eventually(t, func() bool {
		var line voucherdomain.Line
		if err := f.conn.First(&line, "id = ?", lineID).Error; err != nil {
			return false
		}
		return !line.StockLoading && line.CurrentStock == 42
	}, 2*time.Second, 10*time.Millisecond)

	// The stale snapshot commits after the result landed; it must not
	// drag the applied quantity back to zero or re-raise the flag.
	stale.Quantity = 5
	stale.Recompute()
	stale.UpdatedAt = time.Now().UTC()
	repo := voucherrepository.NewRepository(f.conn)
	require.NoError(t, repo.UpdateLine(context.Background(), &stale))

	var line voucherdomain.Line
	require.NoError(t, f.conn.First(&line, "id = ?", lineID).Error)
	assert.Equal(t, float64(5), line.Quantity)
	assert.Equal(t, int64(42), line.CurrentStock)
	assert.False(t, line.StockLoading)
}

func TestSupplyTypeToggleRoundTrip(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(17.2))
	draft := f.draft(t)

	_, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)

	inter, err := f.svc.SetSupplyType(context.Background(), voucherdomain.SetSupplyTypeRequest{
		OrgID: f.orgID, VoucherID: draft.ID,
		SupplyType: taxdomain.SupplyInterstate,
	})
	require.NoError(t, err)
	line := inter.Lines[0]
	assert.Equal(t, float64(18), line.GSTRate)
	assert.Equal(t, float64(0), line.CGSTRate)
	assert.Equal(t, float64(0), line.SGSTRate)
	assert.Equal(t, float64(18), line.IGSTRate)

	back, err := f.svc.SetSupplyType(context.Background(), voucherdomain.SetSupplyTypeRequest{
		OrgID: f.orgID, VoucherID: draft.ID,
		SupplyType: taxdomain.SupplyIntrastate,
	})
	require.NoError(t, err)
	line = back.Lines[0]
	assert.Equal(t, float64(18), line.GSTRate)
	assert.Equal(t, float64(9), line.CGSTRate)
	assert.Equal(t, float64(9), line.SGSTRate)
	assert.Equal(t, float64(0), line.IGSTRate)
	assert.Equal(t, inter.Lines[0].TaxAmount, line.TaxAmount)
}

func TestSetSupplyTypeSameValueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t)

	resp, err := f.svc.SetSupplyType(context.Background(), voucherdomain.SetSupplyTypeRequest{
		OrgID: f.orgID, VoucherID: draft.ID,
		SupplyType: taxdomain.SupplyIntrastate,
	})
	require.NoError(t, err)
	assert.Equal(t, taxdomain.SupplyIntrastate, resp.SupplyType)
}

func TestTotalsSplitByComponent(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(18))
	draft := f.draft(t)

	_, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateLine(context.Background(), voucherdomain.UpdateLineRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		Quantity:    f64(3),
		DiscountPct: f64(10),
	})
	require.NoError(t, err)

	totals, err := f.svc.Totals(context.Background(), f.orgID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(27000), totals.Subtotal)
	assert.Equal(t, int64(2430), totals.CGST)
	assert.Equal(t, int64(2430), totals.SGST)
	assert.Equal(t, int64(0), totals.IGST)
	assert.Equal(t, int64(4860), totals.Tax)
	assert.Equal(t, int64(31860), totals.Total)
}

func TestFinalizeRequiresCompleteLines(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t)

	_, err := f.svc.Finalize(context.Background(), f.orgID, draft.ID)
	assert.ErrorIs(t, err, voucherdomain.ErrMissingProduct)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(18))
	draft := f.draft(t)

	_, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)

	first, err := f.svc.Finalize(context.Background(), f.orgID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, voucherdomain.StatusFinalized, first.Status)
	assert.Equal(t, "INV-"+draft.ID, first.Number)
	require.NotNil(t, first.FinalizedAt)

	second, err := f.svc.Finalize(context.Background(), f.orgID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Number, second.Number)
	assert.Equal(t, first.FinalizedAt.Unix(), second.FinalizedAt.Unix())
}

func TestFinalizedVoucherRejectsEdits(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "widget", 10000, f64(18))
	draft := f.draft(t)

	_, err := f.svc.SelectProduct(context.Background(), voucherdomain.SelectProductRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		ProductID: productID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.Finalize(context.Background(), f.orgID, draft.ID)
	require.NoError(t, err)

	_, err = f.svc.AddLine(context.Background(), voucherdomain.AddLineRequest{
		OrgID: f.orgID, VoucherID: draft.ID,
	})
	assert.ErrorIs(t, err, voucherdomain.ErrVoucherFinalized)

	_, err = f.svc.UpdateLine(context.Background(), voucherdomain.UpdateLineRequest{
		OrgID: f.orgID, VoucherID: draft.ID, LineID: draft.Lines[0].ID,
		Quantity: f64(5),
	})
	assert.ErrorIs(t, err, voucherdomain.ErrVoucherFinalized)
}
