package clause

import (
	"github.com/smallbiznis/polisa/internal/clause/domain"
	"github.com/smallbiznis/polisa/internal/clause/service"
	"github.com/smallbiznis/polisa/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("clause.service",
	fx.Provide(repository.ProvideStore[domain.Clause]),
	fx.Provide(service.New),
)
