package donationrequest

import (
	"github.com/foodbridge/foodbridge/internal/donationrequest/repository"
	"github.com/foodbridge/foodbridge/internal/donationrequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("donationrequest.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
