package bom

import (
	"go.uber.org/fx"

	"github.com/sahajbiz/voucherd/internal/bom/repository"
	"github.com/sahajbiz/voucherd/internal/bom/service"
)

var Module = fx.Module("bom.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
