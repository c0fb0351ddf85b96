package metrics

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	stockLookups      metric.Int64Counter
	staleLookupsDrops metric.Int64Counter
	vouchersFinalized metric.Int64Counter
	reorderAlerts     metric.Int64Counter
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "voucherd"
	}
	meter := provider.Meter(name)

	stockLookups, err := meter.Int64Counter("voucherd_stock_lookups_total")
	if err != nil {
		return nil, err
	}
	staleDrops, err := meter.Int64Counter("voucherd_stale_lookup_drops_total")
	if err != nil {
		return nil, err
	}
	finalized, err := meter.Int64Counter("voucherd_vouchers_finalized_total")
	if err != nil {
		return nil, err
	}
	reorder, err := meter.Int64Counter("voucherd_reorder_alerts_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		stockLookups:      stockLookups,
		staleLookupsDrops: staleDrops,
		vouchersFinalized: finalized,
		reorderAlerts:     reorder,
	}, nil
}

func (m *Metrics) RecordStockLookup(ctx context.Context, cacheHit bool) {
	if m == nil || m.stockLookups == nil {
		return
	}
	m.stockLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", cacheHit)))
}

func (m *Metrics) RecordStaleLookupDrop(ctx context.Context) {
	if m == nil || m.staleLookupsDrops == nil {
		return
	}
	m.staleLookupsDrops.Add(ctx, 1)
}

func (m *Metrics) RecordVoucherFinalized(ctx context.Context, voucherType string) {
	if m == nil || m.vouchersFinalized == nil {
		return
	}
	m.vouchersFinalized.Add(ctx, 1, metric.WithAttributes(attribute.String("type", voucherType)))
}

func (m *Metrics) RecordReorderAlert(ctx context.Context) {
	if m == nil || m.reorderAlerts == nil {
		return
	}
	m.reorderAlerts.Add(ctx, 1)
}
