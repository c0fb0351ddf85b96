// Package pdf renders vouchers to PDF with maroto.
package pdf

import (
	"context"
	"io"

	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
)

type Provider interface {
	RenderVoucher(ctx context.Context, voucher *voucherdomain.Voucher) (io.Reader, error)
}
