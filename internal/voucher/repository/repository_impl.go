package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
	"github.com/sahajbiz/voucherd/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) voucherdomain.Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, voucher *voucherdomain.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id snowflake.ID) (*voucherdomain.Voucher, error) {
	var voucher voucherdomain.Voucher
	err := r.db.WithContext(ctx).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) List(ctx context.Context, filter voucherdomain.ListRequest) ([]voucherdomain.Voucher, error) {
	var items []voucherdomain.Voucher
	stmt := r.db.WithContext(ctx).
		Model(&voucherdomain.Voucher{}).
		Where("org_id = ?", filter.OrgID)

	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"number":     true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateHeader(ctx context.Context, voucher *voucherdomain.Voucher) error {
	return r.db.WithContext(ctx).
		Model(&voucherdomain.Voucher{}).
		Where("org_id = ? AND id = ?", voucher.OrgID, voucher.ID).
		Updates(map[string]any{
			"status":          voucher.Status,
			"number":          voucher.Number,
			"supply_type":     voucher.SupplyType,
			"place_of_supply": voucher.PlaceOfSupply,
			"party_name":      voucher.PartyName,
			"subtotal_amount": voucher.SubtotalAmount,
			"tax_amount":      voucher.TaxAmount,
			"total_amount":    voucher.TotalAmount,
			"finalized_at":    voucher.FinalizedAt,
			"updated_at":      voucher.UpdatedAt,
		}).Error
}

func (r *repository) CreateLine(ctx context.Context, line *voucherdomain.Line) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateLine writes the editable fields only. The stock snapshot columns
// (current_stock, stock_loading, lookup_seq) are owned by BeginStockLookup
// and ApplyStockResult; writing them from a loaded line would let a slow
// field update clobber a lookup result that landed in between.
func (r *repository) UpdateLine(ctx context.Context, line *voucherdomain.Line) error {
	return r.db.WithContext(ctx).
		Model(&voucherdomain.Line{}).
		Where("id = ? AND voucher_id = ?", line.ID, line.VoucherID).
		Updates(map[string]any{
			"product_id":      line.ProductID,
			"description":     line.Description,
			"unit":            line.Unit,
			"quantity":        line.Quantity,
			"unit_price":      line.UnitPrice,
			"discount_mode":   line.DiscountMode,
			"discount_pct":    line.DiscountPct,
			"discount_amount": line.DiscountAmount,
			"gst_rate":        line.GSTRate,
			"cgst_rate":       line.CGSTRate,
			"sgst_rate":       line.SGSTRate,
			"igst_rate":       line.IGSTRate,
			"amount":          line.Amount,
			"tax_amount":      line.TaxAmount,
			"reorder_level":   line.ReorderLevel,
			"updated_at":      line.UpdatedAt,
		}).Error
}

func (r *repository) BeginStockLookup(ctx context.Context, lineID snowflake.ID) (uint64, error) {
	var seq uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&voucherdomain.Line{}).
			Where("id = ?", lineID).
			Updates(map[string]any{
				"current_stock": 0,
				"stock_loading": true,
				"lookup_seq":    gorm.Expr("lookup_seq + 1"),
				"updated_at":    time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tx.Raw(`SELECT lookup_seq FROM voucher_lines WHERE id = ?`, lineID).Scan(&seq).Error
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *repository) DeleteLine(ctx context.Context, orgID, voucherID, lineID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("org_id = ? AND voucher_id = ? AND id = ?", orgID, voucherID, lineID).
		Delete(&voucherdomain.Line{}).Error
}

func (r *repository) ApplyStockResult(ctx context.Context, lineID snowflake.ID, seq uint64, quantity int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&voucherdomain.Line{}).
		Where("id = ? AND lookup_seq = ?", lineID, seq).
		Updates(map[string]any{
			"current_stock": quantity,
			"stock_loading": false,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
