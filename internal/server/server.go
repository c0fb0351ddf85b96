package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sahajbiz/voucherd/internal/bom"
	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	"github.com/sahajbiz/voucherd/internal/catalog"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/config"
	"github.com/sahajbiz/voucherd/internal/observability"
	obslogger "github.com/sahajbiz/voucherd/internal/observability/logger"
	obsmetrics "github.com/sahajbiz/voucherd/internal/observability/metrics"
	obstracing "github.com/sahajbiz/voucherd/internal/observability/tracing"
	"github.com/sahajbiz/voucherd/internal/providers/pdf"
	"github.com/sahajbiz/voucherd/internal/ratelimit"
	"github.com/sahajbiz/voucherd/internal/stock"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	"github.com/sahajbiz/voucherd/internal/tax"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"github.com/sahajbiz/voucherd/internal/voucher"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratelimit.Module,
	tax.Module,
	catalog.Module,
	stock.Module,
	voucher.Module,
	bom.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node

	catalogSvc  catalogdomain.Service
	stockSvc    stockdomain.Service
	voucherSvc  voucherdomain.Service
	voucherRepo voucherdomain.Repository
	taxSvc      taxdomain.Service
	bomSvc      bomdomain.Service
	pdfSvc      pdf.Provider

	bucket   *ratelimit.TokenBucket
	tunables *config.TunablesHolder
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	GenID       *snowflake.Node
	CatalogSvc  catalogdomain.Service
	StockSvc    stockdomain.Service
	VoucherSvc  voucherdomain.Service
	VoucherRepo voucherdomain.Repository
	TaxSvc      taxdomain.Service
	BOMSvc      bomdomain.Service
	PDFSvc      pdf.Provider

	Bucket   *ratelimit.TokenBucket `optional:"true"`
	Tunables *config.TunablesHolder
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		genID:       p.GenID,
		catalogSvc:  p.CatalogSvc,
		stockSvc:    p.StockSvc,
		voucherSvc:  p.VoucherSvc,
		voucherRepo: p.VoucherRepo,
		taxSvc:      p.TaxSvc,
		bomSvc:      p.BOMSvc,
		pdfSvc:      p.PDFSvc,
		bucket:      p.Bucket,
		tunables:    p.Tunables,
	}

	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.OrgContext())

	// -------- Products --------
	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)

	// -------- Stock --------
	// Lookups are the hot path; they carry the token bucket.
	api.GET("/stock", s.StockLookupRateLimit(), s.LookupStock)
	api.POST("/stock/adjust", s.AdjustStock)

	// -------- Tax profile --------
	api.GET("/tax/profile", s.GetTaxProfile)
	api.PUT("/tax/profile", s.UpsertTaxProfile)

	// -------- Vouchers --------
	api.POST("/vouchers", s.CreateVoucher)
	api.GET("/vouchers", s.ListVouchers)
	api.GET("/vouchers/:id", s.GetVoucherByID)
	api.POST("/vouchers/:id/lines", s.AddVoucherLine)
	api.DELETE("/vouchers/:id/lines/:line_id", s.RemoveVoucherLine)
	api.PATCH("/vouchers/:id/lines/:line_id", s.UpdateVoucherLine)
	api.POST("/vouchers/:id/lines/:line_id/product", s.StockLookupRateLimit(), s.SelectVoucherLineProduct)
	api.POST("/vouchers/:id/supply-type", s.SetVoucherSupplyType)
	api.GET("/vouchers/:id/totals", s.GetVoucherTotals)
	api.POST("/vouchers/:id/finalize", s.FinalizeVoucher)
	api.GET("/vouchers/:id/pdf", s.GetVoucherPDF)

	// -------- BOM --------
	api.POST("/boms", s.CreateBOM)
	api.GET("/boms", s.ListBOMs)
	api.GET("/boms/:id", s.GetBOMByID)
	api.PATCH("/boms/:id", s.UpdateBOM)
	api.DELETE("/boms/:id", s.DeleteBOM)
	api.GET("/boms/:id/cost", s.GetBOMCost)
}

func (s *Server) StockLookupRateLimit() gin.HandlerFunc {
	if s.bucket == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return ratelimit.GinMiddleware(s.bucket, s.tunables, "stock-lookup")
}
