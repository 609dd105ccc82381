package intercept

import (
	"github.com/smallbiznis/polisa/internal/intercept/repository"
	"github.com/smallbiznis/polisa/internal/intercept/service"
	"go.uber.org/fx"
)

var Module = fx.Module("intercept.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
