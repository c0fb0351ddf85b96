package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, voucher *Voucher) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Voucher, error)
	List(ctx context.Context, filter ListRequest) ([]Voucher, error)
	UpdateHeader(ctx context.Context, voucher *Voucher) error

	CreateLine(ctx context.Context, line *Line) error

	// UpdateLine writes the user-editable fields of a line. It never
	// touches the stock snapshot columns, so a field update racing an
	// asynchronous lookup cannot undo an applied result.
	UpdateLine(ctx context.Context, line *Line) error
	DeleteLine(ctx context.Context, orgID, voucherID, lineID snowflake.ID) error

	// BeginStockLookup atomically resets a line's stock snapshot (zero
	// quantity, loading flag set) and bumps the lookup sequence,
	// returning the sequence a result must carry to land.
	BeginStockLookup(ctx context.Context, lineID snowflake.ID) (uint64, error)

	// ApplyStockResult writes an asynchronous lookup result onto a line,
	// guarded by the lookup sequence: a stale writer (seq older than the
	// line's current one) changes nothing and returns false.
	ApplyStockResult(ctx context.Context, lineID snowflake.ID, seq uint64, quantity int64) (bool, error)
}
