package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByOrg(ctx context.Context, orgID snowflake.ID) (*taxdomain.TaxProfile, error) {
	var profile taxdomain.TaxProfile
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, org_id, gstin, home_state_code, default_slab, is_enabled, created_at, updated_at
		 FROM tax_profiles
		 WHERE org_id = ?`,
		orgID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repository) Upsert(ctx context.Context, profile *taxdomain.TaxProfile) error {
	existing, err := r.FindByOrg(ctx, profile.OrgID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Exec(
			`INSERT INTO tax_profiles (
				id, org_id, gstin, home_state_code, default_slab, is_enabled, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			profile.ID,
			profile.OrgID,
			profile.GSTIN,
			profile.HomeStateCode,
			profile.DefaultSlab,
			profile.IsEnabled,
			profile.CreatedAt,
			profile.UpdatedAt,
		).Error
	}

	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Exec(
		`UPDATE tax_profiles
		 SET gstin = ?, home_state_code = ?, default_slab = ?, is_enabled = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		profile.GSTIN,
		profile.HomeStateCode,
		profile.DefaultSlab,
		profile.IsEnabled,
		profile.UpdatedAt,
		profile.OrgID,
		profile.ID,
	).Error
}
