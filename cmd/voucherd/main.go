package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	"github.com/sahajbiz/voucherd/internal/migration"
	"github.com/sahajbiz/voucherd/internal/observability"
	"github.com/sahajbiz/voucherd/internal/scheduler"
	"github.com/sahajbiz/voucherd/internal/server"
	"github.com/sahajbiz/voucherd/pkg/db"
	"github.com/sahajbiz/voucherd/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
