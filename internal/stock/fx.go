package stock

import (
	"github.com/sahajbiz/voucherd/internal/stock/repository"
	"github.com/sahajbiz/voucherd/internal/stock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stock.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
