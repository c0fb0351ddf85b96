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

	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	catalogrepository "github.com/sahajbiz/voucherd/internal/catalog/repository"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	stockrepository "github.com/sahajbiz/voucherd/internal/stock/repository"
)

type fixture struct {
	svc   stockdomain.Service
	conn  *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
}

// Redis is left nil so lookups always hit the repository.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.Product{},
		&stockdomain.Warehouse{},
		&stockdomain.StockLevel{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	tunables, err := config.NewTunablesHolder()
	require.NoError(t, err)

	svc := NewService(serviceParam{
		Repository: stockrepository.NewRepository(conn, node),
		Products:   catalogrepository.NewRepository(conn),
		Tunables:   tunables,
		Clock:      clock.NewFakeClock(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)),
	})

	return &fixture{svc: svc, conn: conn, node: node, orgID: node.Generate()}
}

func (f *fixture) product(t *testing.T, code string, reorderLevel int64) snowflake.ID {
	t.Helper()
	p := catalogdomain.Product{
		ID:           f.node.Generate(),
		OrgID:        f.orgID,
		Code:         code,
		Name:         code,
		Unit:         "pcs",
		UnitPrice:    10000,
		ReorderLevel: reorderLevel,
		Active:       true,
	}
	require.NoError(t, f.conn.Create(&p).Error)
	return p.ID
}

func (f *fixture) warehouse(t *testing.T) snowflake.ID {
	t.Helper()
	w := stockdomain.Warehouse{
		ID:        f.node.Generate(),
		OrgID:     f.orgID,
		Name:      "Main Warehouse",
		IsDefault: true,
	}
	require.NoError(t, f.conn.Create(&w).Error)
	return w.ID
}

func TestLookupMissingStockIsZero(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "chair", 0)

	snap, err := f.svc.Lookup(context.Background(), f.orgID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Quantity)
	assert.False(t, snap.Low)
}

func TestLookupUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Lookup(context.Background(), f.orgID, f.node.Generate())
	assert.ErrorIs(t, err, stockdomain.ErrInvalidProduct)
}

func TestAdjustAccumulatesAcrossCalls(t *testing.T) {
	f := newFixture(t)
	f.warehouse(t)
	productID := f.product(t, "desk", 0)

	snap, err := f.svc.Adjust(context.Background(), stockdomain.AdjustRequest{
		OrgID:     f.orgID,
		ProductID: productID.String(),
		Delta:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.Quantity)

	snap, err = f.svc.Adjust(context.Background(), stockdomain.AdjustRequest{
		OrgID:     f.orgID,
		ProductID: productID.String(),
		Delta:     -3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.Quantity)

	lookup, err := f.svc.Lookup(context.Background(), f.orgID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), lookup.Quantity)
}

func TestAdjustRejectsNegativeBalance(t *testing.T) {
	f := newFixture(t)
	f.warehouse(t)
	productID := f.product(t, "lamp", 0)

	_, err := f.svc.Adjust(context.Background(), stockdomain.AdjustRequest{
		OrgID:     f.orgID,
		ProductID: productID.String(),
		Delta:     -1,
	})
	assert.ErrorIs(t, err, stockdomain.ErrInvalidQuantity)
}

func TestAdjustWithoutDefaultWarehouse(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "rug", 0)

	_, err := f.svc.Adjust(context.Background(), stockdomain.AdjustRequest{
		OrgID:     f.orgID,
		ProductID: productID.String(),
		Delta:     5,
	})
	assert.ErrorIs(t, err, stockdomain.ErrInvalidWarehouse)
}

func TestLookupFlagsLowStock(t *testing.T) {
	f := newFixture(t)
	f.warehouse(t)
	productID := f.product(t, "bolt", 10)

	_, err := f.svc.Adjust(context.Background(), stockdomain.AdjustRequest{
		OrgID:     f.orgID,
		ProductID: productID.String(),
		Delta:     4,
	})
	require.NoError(t, err)

	snap, err := f.svc.Lookup(context.Background(), f.orgID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Quantity)
	assert.True(t, snap.Low)
}
