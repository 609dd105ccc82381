package seed

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	"github.com/smallbiznis/polisa/internal/config"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	"github.com/smallbiznis/polisa/internal/migration"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	demoInsurerCode = "demo-life"
	demoChannel     = "portal"
)

var demoRules = json.RawMessage(`{
  "region_restriction": {"denied_regions": ["西藏", "新疆"]},
  "min_insured_count": {"min_count": 3},
  "age_restriction": {"min_age": 16, "max_age": 65},
  "duplicate_application_check": {"scope": "product"},
  "policy_limit_check": {"max_policies_per_employee": 1, "scope": "product"}
}`)

type Params struct {
	fx.In

	Schema      migration.Applied
	Cfg         config.Config
	Log         *zap.Logger
	Insurers    insurerdomain.Service
	Products    productdomain.Service
	Clauses     clausedomain.Service
	Liabilities liabilitydomain.Service
	Plans       plandomain.Service
	Rates       ratedomain.Service
}

// EnsureDemoCatalog creates a small catalog covering both premium types.
// It does nothing when the demo insurer already exists.
func EnsureDemoCatalog(ctx context.Context, p Params) error {
	if p.Insurers == nil {
		return errors.New("seed services are required")
	}
	log := p.Log.Named("seed")

	existing, err := p.Insurers.List(ctx, insurerdomain.ListRequest{})
	if err != nil {
		return err
	}
	for _, ins := range existing {
		if ins.Code == demoInsurerCode {
			log.Info("demo catalog already present")
			return nil
		}
	}

	insurer, err := p.Insurers.Create(ctx, insurerdomain.CreateRequest{Code: demoInsurerCode, Name: "示范人寿"})
	if err != nil {
		return err
	}
	if _, err := p.Insurers.UpsertChannelConfig(ctx, insurerdomain.UpsertChannelConfigRequest{
		InsurerID:      insurer.ID,
		ChannelCode:    demoChannel,
		InterceptRules: demoRules,
	}); err != nil {
		return err
	}

	clause, err := p.Clauses.Create(ctx, clausedomain.CreateRequest{
		InsurerID: insurer.ID,
		Code:      "group-accident-2024",
		Name:      "团体意外伤害保险条款",
		Content:   "被保险人因遭受意外伤害事故导致身故或伤残的，保险人按约定给付保险金。",
	})
	if err != nil {
		return err
	}

	death, err := p.Liabilities.Create(ctx, liabilitydomain.CreateRequest{
		InsurerID: insurer.ID,
		ClauseID:  clause.ID,
		Code:      "accidental-death",
		Name:      "意外身故及伤残",
		Type:      "accident",
		Unit:      string(liabilitydomain.UnitAmount),
	})
	if err != nil {
		return err
	}
	medical, err := p.Liabilities.Create(ctx, liabilitydomain.CreateRequest{
		InsurerID:    insurer.ID,
		ClauseID:     clause.ID,
		Code:         "accidental-medical",
		Name:         "意外医疗",
		Type:         "medical",
		Unit:         string(liabilitydomain.UnitAmount),
		IsAdditional: true,
	})
	if err != nil {
		return err
	}

	if err := seedCalculatedProduct(ctx, p, insurer.ID, death.ID, medical.ID); err != nil {
		return err
	}
	if err := seedFixedProduct(ctx, p, insurer.ID, death.ID); err != nil {
		return err
	}

	log.Info("demo catalog seeded", zap.String("insurer_id", insurer.ID))
	return nil
}

func seedCalculatedProduct(ctx context.Context, p Params, insurerID, deathID, medicalID string) error {
	product, err := p.Products.Create(ctx, productdomain.CreateRequest{
		InsurerID: insurerID,
		Code:      "group-accident",
		Name:      "团体意外险",
		Type:      "accident",
	})
	if err != nil {
		return err
	}

	jobMin, jobMax := 1, 4
	plan, err := p.Plans.Create(ctx, plandomain.CreateRequest{
		ProductID:   product.ID,
		Code:        "standard",
		Name:        "标准计划",
		JobClassMin: &jobMin,
		JobClassMax: &jobMax,
		Durations:   []string{"1年", "6个月"},
		PaymentType: "annual",
	})
	if err != nil {
		return err
	}

	deathDefault := "500000"
	if _, err := p.Plans.BindLiability(ctx, plandomain.BindLiabilityRequest{
		PlanID:          plan.ID,
		LiabilityID:     deathID,
		Required:        true,
		CoverageOptions: []string{"100000", "500000"},
		DefaultCoverage: &deathDefault,
		DisplayOrder:    1,
	}); err != nil {
		return err
	}
	if _, err := p.Plans.BindLiability(ctx, plandomain.BindLiabilityRequest{
		PlanID:          plan.ID,
		LiabilityID:     medicalID,
		CoverageOptions: []string{"10000", "50000"},
		DisplayOrder:    2,
	}); err != nil {
		return err
	}

	type tier struct {
		liabilityID string
		coverage    int64
		baseRate    string
	}
	tiers := []tier{
		{deathID, 100000, "30"},
		{deathID, 500000, "120"},
		{medicalID, 10000, "18"},
		{medicalID, 50000, "65"},
	}
	for _, t := range tiers {
		for jobClass := jobMin; jobClass <= jobMax; jobClass++ {
			coverage := decimal.NewFromInt(t.coverage)
			base := decimal.RequireFromString(t.baseRate)
			// each job class step adds ten percent
			factor := decimal.NewFromInt(int64(9 + jobClass)).Div(decimal.NewFromInt(10))
			jc := jobClass
			if _, err := p.Rates.Create(ctx, ratedomain.CreateRequest{
				ProductID:      product.ID,
				PremiumType:    string(ratedomain.PremiumTypeCalculated),
				LiabilityID:    t.liabilityID,
				JobClass:       &jc,
				CoverageAmount: &coverage,
				BaseRate:       &base,
				RateFactor:     &factor,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedFixedProduct(ctx context.Context, p Params, insurerID, deathID string) error {
	product, err := p.Products.Create(ctx, productdomain.CreateRequest{
		InsurerID: insurerID,
		Code:      "employer-liability",
		Name:      "雇主责任险",
		Type:      "liability",
	})
	if err != nil {
		return err
	}

	plan, err := p.Plans.Create(ctx, plandomain.CreateRequest{
		ProductID:   product.ID,
		Code:        "basic",
		Name:        "基础版",
		Durations:   []string{"1年", "6个月", "1个月"},
		PaymentType: "monthly",
	})
	if err != nil {
		return err
	}
	if _, err := p.Plans.BindLiability(ctx, plandomain.BindLiabilityRequest{
		PlanID:          plan.ID,
		LiabilityID:     deathID,
		Required:        true,
		CoverageOptions: []string{"300000"},
		DisplayOrder:    1,
	}); err != nil {
		return err
	}

	monthly := decimal.NewFromInt(28)
	annual := decimal.NewFromInt(336)
	_, err = p.Rates.Create(ctx, ratedomain.CreateRequest{
		ProductID:      product.ID,
		PremiumType:    string(ratedomain.PremiumTypeFixed),
		PlanID:         plan.ID,
		MonthlyPremium: &monthly,
		AnnualPremium:  &annual,
	})
	return err
}
