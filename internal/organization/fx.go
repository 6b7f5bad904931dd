package organization

import (
	"github.com/foodbridge/foodbridge/internal/organization/repository"
	"github.com/foodbridge/foodbridge/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
