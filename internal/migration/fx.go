package migration

import (
	"github.com/foodbridge/foodbridge/internal/config"

	authdomain "github.com/foodbridge/foodbridge/internal/auth/domain"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	requestdomain "github.com/foodbridge/foodbridge/internal/donationrequest/domain"
	organizationdomain "github.com/foodbridge/foodbridge/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(run),
)

func run(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.DBType == "postgres" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	}

	// Non-postgres dialects are dev/test conveniences; let gorm shape them.
	if err := gdb.AutoMigrate(
		&organizationdomain.Organization{},
		&authdomain.Admin{},
		&authdomain.Session{},
		&donationdomain.Donation{},
		&requestdomain.DonationRequest{},
	); err != nil {
		return err
	}
	log.Info("schema automigrated", zap.String("dialect", cfg.DBType))
	return nil
}
