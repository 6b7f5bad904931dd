package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/clock"
	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/migration"
	"github.com/foodbridge/foodbridge/internal/observability"
	"github.com/foodbridge/foodbridge/internal/scheduler"
	"github.com/foodbridge/foodbridge/internal/seed"
	"github.com/foodbridge/foodbridge/internal/server"
	"github.com/foodbridge/foodbridge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
