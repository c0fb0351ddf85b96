package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	"gorm.io/gorm"
)

type repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRepository(conn *gorm.DB, genID *snowflake.Node) stockdomain.Repository {
	return &repository{db: conn, genID: genID}
}

func (r *repository) OnHand(ctx context.Context, orgID, productID snowflake.ID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT SUM(quantity) FROM stock_levels WHERE org_id = ? AND product_id = ?`,
		orgID,
		productID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) Adjust(ctx context.Context, orgID, productID, warehouseID snowflake.ID, delta int64) (int64, error) {
	var quantity int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var level stockdomain.StockLevel
		err := tx.Where("org_id = ? AND product_id = ? AND warehouse_id = ?", orgID, productID, warehouseID).
			First(&level).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			level = stockdomain.StockLevel{
				ID:          r.genID.Generate(),
				OrgID:       orgID,
				ProductID:   productID,
				WarehouseID: warehouseID,
			}
			if err := tx.Create(&level).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		level.Quantity += delta
		if level.Quantity < 0 {
			return stockdomain.ErrInvalidQuantity
		}
		if err := tx.Model(&stockdomain.StockLevel{}).
			Where("id = ?", level.ID).
			Update("quantity", level.Quantity).Error; err != nil {
			return err
		}
		quantity = level.Quantity
		return nil
	})
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func (r *repository) DefaultWarehouse(ctx context.Context, orgID snowflake.ID) (*stockdomain.Warehouse, error) {
	var warehouse stockdomain.Warehouse
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_default = ?", orgID, true).
		First(&warehouse).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) BelowReorder(ctx context.Context, orgID snowflake.ID, limit int) ([]stockdomain.ReorderCandidate, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT p.org_id, p.id AS product_id, p.name AS product_name,
	                 COALESCE(SUM(sl.quantity), 0) AS on_hand, p.reorder_level
	          FROM products p
	          LEFT JOIN stock_levels sl ON sl.product_id = p.id AND sl.org_id = p.org_id
	          WHERE p.active = ? AND p.reorder_level > 0`
	args := []any{true}
	if orgID != 0 {
		query += ` AND p.org_id = ?`
		args = append(args, orgID)
	}
	query += ` GROUP BY p.org_id, p.id, p.name, p.reorder_level
	           HAVING COALESCE(SUM(sl.quantity), 0) <= p.reorder_level
	           LIMIT ?`
	args = append(args, limit)

	var out []stockdomain.ReorderCandidate
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
