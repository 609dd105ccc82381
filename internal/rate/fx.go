package rate

import (
	"github.com/smallbiznis/polisa/internal/rate/repository"
	"github.com/smallbiznis/polisa/internal/rate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
