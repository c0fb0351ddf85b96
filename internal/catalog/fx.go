package catalog

import (
	"github.com/sahajbiz/voucherd/internal/catalog/repository"
	"github.com/sahajbiz/voucherd/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
