package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polisa/internal/clock"
	"github.com/smallbiznis/polisa/internal/config"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	"github.com/smallbiznis/polisa/internal/intercept/domain"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polisa/internal/observability/metrics"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Clock        clock.Clock
	Underwriting *config.UnderwritingConfigHolder
	Lookup       domain.Lookup
	Products     productdomain.Repository
	Insurers     insurerdomain.Repository
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	defaultChan  string
	clock        clock.Clock
	underwriting *config.UnderwritingConfigHolder
	lookup       domain.Lookup
	products     productdomain.Repository
	insurers     insurerdomain.Repository
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("intercept.service"),
		defaultChan:  strings.TrimSpace(p.Cfg.DefaultChannel),
		clock:        p.Clock,
		underwriting: p.Underwriting,
		lookup:       p.Lookup,
		products:     p.Products,
		insurers:     p.Insurers,
		metrics:      p.Metrics,
	}
}

func (s *Service) defaults() domain.Defaults {
	cfg := s.underwriting.Get()
	return domain.Defaults{
		MinInsuredCount:        cfg.MinInsuredCount,
		MinAge:                 cfg.MinAge,
		MaxAge:                 cfg.MaxAge,
		MaxPoliciesPerEmployee: cfg.MaxPoliciesPerEmployee,
	}
}

func (s *Service) ParseRules(raw []byte) (domain.RuleSet, error) {
	return domain.ParseRuleSet(raw, s.defaults())
}

func (s *Service) RulesForProduct(ctx context.Context, db *gorm.DB, productID int64, channel string) (domain.RuleSet, error) {
	if db == nil {
		db = s.db
	}
	product, err := s.products.FindByID(ctx, db, productID)
	if err != nil {
		return domain.RuleSet{}, err
	}
	if product == nil {
		return domain.RuleSet{}, domain.ErrProductNotFound
	}

	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = s.defaultChan
	}

	cfg, err := s.insurers.FindChannelConfig(ctx, db, product.InsurerID, channel)
	if err != nil {
		return domain.RuleSet{}, err
	}
	if cfg == nil || !cfg.Active {
		return domain.RuleSet{}, nil
	}

	rs, err := s.ParseRules([]byte(cfg.InterceptRulesJSON))
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("stored intercept rules do not parse",
			zap.Int64("insurer_id", product.InsurerID),
			zap.String("channel", channel),
			zap.Error(err),
		)
		return domain.RuleSet{}, fmt.Errorf("%w: insurer %d channel %q: %v", domain.ErrStoredRulesInvalid, product.InsurerID, channel, err)
	}
	return rs, nil
}

func (s *Service) GetProductRules(ctx context.Context, productID, channel string) (domain.RuleSet, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil || id == 0 {
		return domain.RuleSet{}, domain.ErrInvalidProductID
	}
	return s.RulesForProduct(ctx, s.db, id.Int64(), channel)
}

func (s *Service) Evaluate(ctx context.Context, db *gorm.DB, rs domain.RuleSet, app domain.ApplicationContext) error {
	if rs.Empty() {
		return nil
	}
	if db == nil {
		db = s.db
	}

	uw := s.underwriting.Get()
	err := rs.Evaluate(&domain.CheckInput{
		Ctx:               ctx,
		DB:                db,
		Lookup:            s.lookup,
		Today:             clock.Today(s.clock),
		App:               app,
		DuplicateStatuses: uw.DuplicateStatuses,
		PolicyStatuses:    uw.PolicyStatuses,
	})
	if v, ok := domain.AsViolation(err); ok {
		s.metrics.RecordInterception(ctx, string(v.Kind))
		obslogger.WithContext(ctx, s.log).Info("application intercepted",
			zap.String("kind", string(v.Kind)),
			zap.Int64("product_id", app.ProductID),
		)
	}
	return err
}
