package seed

import (
	"github.com/foodbridge/foodbridge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(run),
)

func run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if !cfg.SeedAdmin {
		return nil
	}
	if err := EnsureAdminAndSampleOrgs(db); err != nil {
		return err
	}
	log.Info("seed data ensured")
	return nil
}
