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
)

type fixture struct {
	svc   catalogdomain.Service
	orgID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&catalogdomain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(serviceParam{
		Repository: catalogrepository.NewRepository(conn),
		Clock:      clock.NewFakeClock(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)),
		GenID:      node,
	})

	return &fixture{svc: svc, orgID: node.Generate()}
}

func TestCreateSlugsCodeAndDefaults(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), catalogdomain.CreateRequest{
		OrgID:     f.orgID,
		Name:      "Teak Dining Chair",
		UnitPrice: 450000,
	})
	require.NoError(t, err)
	assert.Equal(t, "teak-dining-chair", resp.Code)
	assert.Equal(t, "pcs", resp.Unit)
	assert.True(t, resp.Active)
}

func TestCreateDuplicateCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), catalogdomain.CreateRequest{
		OrgID: f.orgID,
		Code:  "chair",
		Name:  "Chair",
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), catalogdomain.CreateRequest{
		OrgID: f.orgID,
		Code:  "chair",
		Name:  "Another Chair",
	})
	assert.ErrorIs(t, err, catalogdomain.ErrDuplicateCode)
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), catalogdomain.CreateRequest{
		OrgID:     f.orgID,
		Name:      "Chair",
		UnitPrice: -1,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidUnitPrice)
}

func TestUpdatePartialFields(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), catalogdomain.CreateRequest{
		OrgID:     f.orgID,
		Name:      "Chair",
		UnitPrice: 100000,
	})
	require.NoError(t, err)

	price := int64(120000)
	updated, err := f.svc.Update(context.Background(), catalogdomain.UpdateRequest{
		OrgID:     f.orgID,
		ID:        created.ID,
		UnitPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), updated.UnitPrice)
	assert.Equal(t, created.Name, updated.Name)

	got, err := f.svc.Get(context.Background(), f.orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), got.UnitPrice)
}

func TestGetUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), f.orgID, "12345")
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}
