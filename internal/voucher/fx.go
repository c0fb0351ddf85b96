package voucher

import (
	"github.com/sahajbiz/voucherd/internal/voucher/repository"
	"github.com/sahajbiz/voucherd/internal/voucher/service"
	"go.uber.org/fx"
)

var Module = fx.Module("voucher.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
