package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	stockrepository "github.com/sahajbiz/voucherd/internal/stock/repository"
)

func newTestScheduler(t *testing.T) (*Scheduler, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}, &stockdomain.StockLevel{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewTunablesHolder()
	require.NoError(t, err)

	sched, err := New(Params{
		Log:      zap.NewNop(),
		Stock:    stockrepository.NewRepository(conn, node),
		Tunables: holder,
		Clock:    clock.NewFakeClock(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return sched, conn, node
}

func seedProduct(t *testing.T, conn *gorm.DB, node *snowflake.Node, reorderLevel, onHand int64) snowflake.ID {
	t.Helper()

	orgID := node.Generate()
	product := domain.Product{
		ID:           node.Generate(),
		OrgID:        orgID,
		Code:         "widget",
		Name:         "Widget",
		Unit:         "pcs",
		ReorderLevel: reorderLevel,
		Active:       true,
	}
	require.NoError(t, conn.Create(&product).Error)
	require.NoError(t, conn.Create(&stockdomain.StockLevel{
		ID:          node.Generate(),
		OrgID:       orgID,
		ProductID:   product.ID,
		WarehouseID: node.Generate(),
		Quantity:    onHand,
	}).Error)
	return product.ID
}

func TestSweepFlagsLowStock(t *testing.T) {
	sched, conn, node := newTestScheduler(t)
	seedProduct(t, conn, node, 10, 5)

	require.NoError(t, sched.Sweep(context.Background()))

	candidates, err := sched.stock.BelowReorder(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, int64(5), candidates[0].OnHand)
	require.Equal(t, int64(10), candidates[0].ReorderLevel)
}

func TestSweepIgnoresHealthyStock(t *testing.T) {
	sched, conn, node := newTestScheduler(t)
	seedProduct(t, conn, node, 10, 50)

	require.NoError(t, sched.Sweep(context.Background()))

	candidates, err := sched.stock.BelowReorder(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestSweepWithoutLockerStillRuns(t *testing.T) {
	sched, _, _ := newTestScheduler(t)
	require.Nil(t, sched.locker)
	require.NoError(t, sched.Sweep(context.Background()))
}
