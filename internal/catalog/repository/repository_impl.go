package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/pkg/db"
	"github.com/sahajbiz/voucherd/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) catalogdomain.Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, product *catalogdomain.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if db.IsDuplicateKeyErr(err) {
		return catalogdomain.ErrDuplicateCode
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, orgID, id snowflake.ID) (*catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter catalogdomain.ListRequest) ([]catalogdomain.Product, error) {
	var items []catalogdomain.Product
	stmt := r.db.WithContext(ctx).
		Model(&catalogdomain.Product{}).
		Where("org_id = ?", filter.OrgID)

	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"code":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, product *catalogdomain.Product) error {
	return r.db.WithContext(ctx).
		Model(&catalogdomain.Product{}).
		Where("org_id = ? AND id = ?", product.OrgID, product.ID).
		Updates(map[string]any{
			"name":          product.Name,
			"unit":          product.Unit,
			"unit_price":    product.UnitPrice,
			"gst_rate":      product.GSTRate,
			"reorder_level": product.ReorderLevel,
			"hsn_code":      product.HSNCode,
			"active":        product.Active,
			"updated_at":    product.UpdatedAt,
		}).Error
}
