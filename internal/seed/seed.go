// Package seed bootstraps the default organization and warehouse so a
// fresh install is usable without any setup calls.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	organizationdomain "github.com/sahajbiz/voucherd/internal/organization/domain"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
)

const (
	defaultOrgName       = "Main"
	defaultOrgSlug       = "main"
	defaultWarehouseName = "Main Warehouse"
)

// EnsureDefaultOrg seeds the default organization and its warehouse.
func EnsureDefaultOrg(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureDefaultOrgWithID seeds the default organization with a fixed ID,
// used when DEFAULT_ORG pins the org for single-tenant installs.
func EnsureDefaultOrgWithID(db *gorm.DB, orgID int64) error {
	return ensure(db, snowflake.ID(orgID))
}

func ensure(db *gorm.DB, orgID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrgTx(ctx, tx, node, orgID)
		if err != nil {
			return err
		}
		return ensureWarehouseTx(ctx, tx, node, org.ID)
	})
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}

	if orgID == 0 {
		orgID = node.Generate()
	}
	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        orgID,
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}

func ensureWarehouseTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var wh stockdomain.Warehouse
	err := tx.WithContext(ctx).
		Where("org_id = ? AND is_default = ?", orgID, true).
		First(&wh).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	wh = stockdomain.Warehouse{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      defaultWarehouseName,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&wh).Error
}
