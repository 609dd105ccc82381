package liability

import (
	"github.com/smallbiznis/polisa/internal/liability/repository"
	"github.com/smallbiznis/polisa/internal/liability/service"
	"go.uber.org/fx"
)

var Module = fx.Module("liability.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
