package tax

import (
	"github.com/sahajbiz/voucherd/internal/tax/repository"
	"github.com/sahajbiz/voucherd/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
