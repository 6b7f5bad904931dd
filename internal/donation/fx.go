package donation

import (
	"github.com/foodbridge/foodbridge/internal/donation/repository"
	"github.com/foodbridge/foodbridge/internal/donation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
