package pdf

import (
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
	fx.Provide(func(p *Provider) appdomain.QuotationRenderer { return p }),
)

// Provider renders documents with maroto.
type Provider struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Provider {
	return &Provider{log: log.Named("pdf.provider")}
}
