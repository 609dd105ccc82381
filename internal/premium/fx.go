package premium

import (
	"github.com/smallbiznis/polisa/internal/premium/service"
	"go.uber.org/fx"
)

var Module = fx.Module("premium.service",
	fx.Provide(service.New),
)
