package seed

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("seed",
	fx.Invoke(func(p Params) error {
		if !p.Cfg.SeedDemoCatalog {
			return nil
		}
		return EnsureDemoCatalog(context.Background(), p)
	}),
)
