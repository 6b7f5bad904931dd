package auth

import (
	"github.com/foodbridge/foodbridge/internal/auth/repository"
	"github.com/foodbridge/foodbridge/internal/auth/service"
	"github.com/foodbridge/foodbridge/internal/auth/token"
	"github.com/foodbridge/foodbridge/internal/clock"
	"github.com/foodbridge/foodbridge/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(newIssuer),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)

func newIssuer(cfg config.Config, clk clock.Clock) (*token.Issuer, error) {
	return token.NewIssuer(cfg.AdminJWTSecret, clk.Now)
}
