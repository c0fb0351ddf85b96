package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	bomrepository "github.com/sahajbiz/voucherd/internal/bom/repository"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	catalogrepository "github.com/sahajbiz/voucherd/internal/catalog/repository"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
)

type fixture struct {
	svc   bomdomain.Service
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
		&bomdomain.BOM{},
		&bomdomain.BOMComponent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(serviceParam{
		Repository: bomrepository.NewRepository(conn),
		Products:   catalogrepository.NewRepository(conn),
		Config:     config.Config{Currency: "INR"},
		Clock:      clock.NewFakeClock(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)),
		GenID:      node,
	})

	return &fixture{svc: svc, conn: conn, node: node, orgID: node.Generate()}
}

func (f *fixture) product(t *testing.T, code string, unitPrice int64) snowflake.ID {
	t.Helper()
	p := catalogdomain.Product{
		ID:        f.node.Generate(),
		OrgID:     f.orgID,
		Code:      code,
		Name:      code,
		Unit:      "pcs",
		UnitPrice: unitPrice,
		Active:    true,
	}
	require.NoError(t, f.conn.Create(&p).Error)
	return p.ID
}

func TestCreateAndCost(t *testing.T) {
	f := newFixture(t)
	output := f.product(t, "table", 0)
	legs := f.product(t, "leg", 2000)
	top := f.product(t, "top", 50000)

	bom, err := f.svc.Create(context.Background(), bomdomain.CreateRequest{
		OrgID:           f.orgID,
		OutputProductID: output.String(),
		Name:            "Dining Table",
		Components: []bomdomain.ComponentInput{
			{ComponentProductID: legs.String(), Quantity: 4, WastagePct: 5},
			{ComponentProductID: top.String(), Quantity: 1, WastagePct: 0},
		},
	})
	require.NoError(t, err)
	require.Len(t, bom.Components, 2)

	// 4 legs at 20.00 with 5% wastage: 4.2 * 2000 = 8400.
	assert.Equal(t, int64(8400), bom.Components[0].Cost)
	assert.InDelta(t, 4.2, bom.Components[0].TotalQuantity, 1e-9)

	cost, err := f.svc.Cost(context.Background(), f.orgID, bom.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8400+50000), cost.TotalCost)
	assert.Equal(t, "INR", cost.Currency)
}

func TestCreateRejectsUnknownComponent(t *testing.T) {
	f := newFixture(t)
	output := f.product(t, "chair", 0)

	_, err := f.svc.Create(context.Background(), bomdomain.CreateRequest{
		OrgID:           f.orgID,
		OutputProductID: output.String(),
		Components: []bomdomain.ComponentInput{
			{ComponentProductID: f.node.Generate().String(), Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, bomdomain.ErrInvalidComponent)
}

func TestCreateRejectsBadWastage(t *testing.T) {
	f := newFixture(t)
	output := f.product(t, "desk", 0)
	part := f.product(t, "panel", 1000)

	_, err := f.svc.Create(context.Background(), bomdomain.CreateRequest{
		OrgID:           f.orgID,
		OutputProductID: output.String(),
		Components: []bomdomain.ComponentInput{
			{ComponentProductID: part.String(), Quantity: 1, WastagePct: 120},
		},
	})
	assert.ErrorIs(t, err, bomdomain.ErrInvalidWastage)
}

func TestDuplicateOutputProduct(t *testing.T) {
	f := newFixture(t)
	output := f.product(t, "shelf", 0)

	_, err := f.svc.Create(context.Background(), bomdomain.CreateRequest{
		OrgID:           f.orgID,
		OutputProductID: output.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), bomdomain.CreateRequest{
		OrgID:           f.orgID,
		OutputProductID: output.String(),
	})
	assert.ErrorIs(t, err, bomdomain.ErrDuplicateBOM)
}

func TestUpdateReplacesComponents(t *testing.T) {
	f := newFixture(t)
	output := f.product(t, "bench", 0)
	a := f.product(t, "plank", 3000)
	b := f.product(t, "bracket", 500)

	bom, err := f.svc.Create(context.Background(), bomdomain.CreateRequest{
		OrgID:           f.orgID,
		OutputProductID: output.String(),
		Components: []bomdomain.ComponentInput{
			{ComponentProductID: a.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), bomdomain.UpdateRequest{
		OrgID: f.orgID,
		ID:    bom.ID,
		Components: []bomdomain.ComponentInput{
			{ComponentProductID: b.String(), Quantity: 6, WastagePct: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Components, 1)
	assert.Equal(t, b.String(), updated.Components[0].ComponentProductID)
	// 6 brackets at 5.00 with 10% wastage: 6.6 * 500 = 3300.
	assert.Equal(t, int64(3300), updated.Components[0].Cost)
}
