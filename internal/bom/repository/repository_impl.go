package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	"github.com/sahajbiz/voucherd/pkg/db"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) bomdomain.Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, bom *bomdomain.BOM) error {
	if err := r.db.WithContext(ctx).Create(bom).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return bomdomain.ErrDuplicateBOM
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, orgID, id snowflake.ID) (*bomdomain.BOM, error) {
	var bom bomdomain.BOM
	err := r.db.WithContext(ctx).
		Preload("Components", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&bom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bom, nil
}

func (r *repository) FindByOutputProduct(ctx context.Context, orgID, productID snowflake.ID) (*bomdomain.BOM, error) {
	var bom bomdomain.BOM
	err := r.db.WithContext(ctx).
		Preload("Components", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("org_id = ? AND output_product_id = ?", orgID, productID).
		First(&bom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bom, nil
}

func (r *repository) List(ctx context.Context, orgID snowflake.ID) ([]bomdomain.BOM, error) {
	var boms []bomdomain.BOM
	err := r.db.WithContext(ctx).
		Preload("Components", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&boms).Error
	if err != nil {
		return nil, err
	}
	return boms, nil
}

// Update replaces the component set wholesale inside one transaction.
func (r *repository) Update(ctx context.Context, bom *bomdomain.BOM) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&bomdomain.BOM{}).
			Where("org_id = ? AND id = ?", bom.OrgID, bom.ID).
			Updates(map[string]any{
				"name":       bom.Name,
				"updated_at": bom.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("bom_id = ?", bom.ID).
			Delete(&bomdomain.BOMComponent{}).Error; err != nil {
			return err
		}
		if len(bom.Components) == 0 {
			return nil
		}
		return tx.Create(&bom.Components).Error
	})
}

func (r *repository) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bom_id = ?", id).
			Delete(&bomdomain.BOMComponent{}).Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND id = ?", orgID, id).
			Delete(&bomdomain.BOM{}).Error
	})
}
