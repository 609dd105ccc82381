package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polisa/internal/clock"
	"github.com/smallbiznis/polisa/internal/config"
	"github.com/smallbiznis/polisa/internal/migration"
	"github.com/smallbiznis/polisa/internal/observability"
	"github.com/smallbiznis/polisa/internal/scheduler"
	"github.com/smallbiznis/polisa/internal/seed"
	"github.com/smallbiznis/polisa/internal/server"
	"github.com/smallbiznis/polisa/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and every domain it serves
		server.Module,

		seed.Module,

		// Background jobs
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
