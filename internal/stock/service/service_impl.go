package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	obsmetrics "github.com/sahajbiz/voucherd/internal/observability/metrics"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	"github.com/sahajbiz/voucherd/pkg/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParam struct {
	fx.In

	Repository stockdomain.Repository
	Products   catalogdomain.Repository
	Tunables   *config.TunablesHolder
	Clock      clock.Clock
	Metrics    *obsmetrics.Metrics
	Redis      *redis.Client `optional:"true"`
}

type service struct {
	repo     stockdomain.Repository
	products catalogdomain.Repository
	tunables *config.TunablesHolder
	clock    clock.Clock
	metrics  *obsmetrics.Metrics
	cache    *redis.Client
}

func NewService(p serviceParam) stockdomain.Service {
	return &service{
		repo:     p.Repository,
		products: p.Products,
		tunables: p.Tunables,
		clock:    p.Clock,
		metrics:  p.Metrics,
		cache:    p.Redis,
	}
}

func (s *service) Lookup(ctx context.Context, orgID, productID snowflake.ID) (*stockdomain.Snapshot, error) {
	if orgID == 0 {
		return nil, stockdomain.ErrInvalidOrganization
	}
	if productID == 0 {
		return nil, stockdomain.ErrInvalidProduct
	}

	product, err := s.products.FindByID(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, stockdomain.ErrInvalidProduct
	}

	quantity, cacheHit := s.cachedQuantity(ctx, orgID, productID)
	if !cacheHit {
		quantity, err = s.repo.OnHand(ctx, orgID, productID)
		if err != nil {
			return nil, err
		}
		s.storeQuantity(ctx, orgID, productID, quantity)
	}
	s.metrics.RecordStockLookup(ctx, cacheHit)

	return &stockdomain.Snapshot{
		ProductID:    productID,
		Quantity:     quantity,
		ReorderLevel: product.ReorderLevel,
		Low:          stockdomain.IsLow(quantity, product.ReorderLevel),
		FetchedAt:    s.clock.Now(),
	}, nil
}

func (s *service) Adjust(ctx context.Context, req stockdomain.AdjustRequest) (*stockdomain.Snapshot, error) {
	if req.OrgID == 0 {
		return nil, stockdomain.ErrInvalidOrganization
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, stockdomain.ErrInvalidProduct
	}
	product, err := s.products.FindByID(ctx, req.OrgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, stockdomain.ErrInvalidProduct
	}

	var warehouseID snowflake.ID
	if raw := strings.TrimSpace(req.WarehouseID); raw != "" {
		warehouseID, err = snowflake.ParseString(raw)
		if err != nil {
			return nil, stockdomain.ErrInvalidWarehouse
		}
	} else {
		warehouse, err := s.repo.DefaultWarehouse(ctx, req.OrgID)
		if err != nil {
			return nil, err
		}
		if warehouse == nil {
			return nil, stockdomain.ErrInvalidWarehouse
		}
		warehouseID = warehouse.ID
	}

	if _, err := s.repo.Adjust(ctx, req.OrgID, productID, warehouseID, req.Delta); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.OrgID, productID)

	quantity, err := s.repo.OnHand(ctx, req.OrgID, productID)
	if err != nil {
		return nil, err
	}
	return &stockdomain.Snapshot{
		ProductID:    productID,
		Quantity:     quantity,
		ReorderLevel: product.ReorderLevel,
		Low:          stockdomain.IsLow(quantity, product.ReorderLevel),
		FetchedAt:    s.clock.Now(),
	}, nil
}

// Cache failures degrade to a repository read; they are never surfaced.

func (s *service) cachedQuantity(ctx context.Context, orgID, productID snowflake.ID) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(orgID, productID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.L(ctx).Warn("stock cache read failed", zap.Error(err))
		}
		return 0, false
	}
	quantity, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return quantity, true
}

func (s *service) storeQuantity(ctx context.Context, orgID, productID snowflake.ID, quantity int64) {
	if s.cache == nil {
		return
	}
	ttl := s.tunables.Current().StockCacheTTL
	if err := s.cache.Set(ctx, cacheKey(orgID, productID), strconv.FormatInt(quantity, 10), ttl).Err(); err != nil {
		log.L(ctx).Warn("stock cache write failed", zap.Error(err))
	}
}

func (s *service) invalidate(ctx context.Context, orgID, productID snowflake.ID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(orgID, productID)).Err(); err != nil {
		log.L(ctx).Warn("stock cache invalidate failed", zap.Error(err))
	}
}

func cacheKey(orgID, productID snowflake.ID) string {
	return "stock:" + orgID.String() + ":" + productID.String()
}
