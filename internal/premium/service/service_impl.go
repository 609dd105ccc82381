package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polisa/internal/clock"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polisa/internal/observability/metrics"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	"github.com/smallbiznis/polisa/internal/premium/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
	"github.com/smallbiznis/polisa/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Rates    ratedomain.Service
	Products productdomain.Repository
	Plans    plandomain.Repository
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	rates    ratedomain.Service
	products productdomain.Repository
	plans    plandomain.Repository
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("premium.service"),
		clock:    p.Clock,
		rates:    p.Rates,
		products: p.Products,
		plans:    p.Plans,
		metrics:  p.Metrics,
	}
}

func (s *Service) Calculate(ctx context.Context, req domain.CalculateRequest) (*domain.Result, error) {
	return s.CalculateTx(ctx, s.db, req)
}

func (s *Service) CalculateTx(ctx context.Context, tx *gorm.DB, req domain.CalculateRequest) (*domain.Result, error) {
	if tx == nil {
		tx = s.db
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID <= 0 {
		return nil, domain.ErrProductRequired
	}
	planID, err := snowflake.ParseString(strings.TrimSpace(req.PlanID))
	if err != nil || planID <= 0 {
		return nil, domain.ErrPlanRequired
	}
	if req.InsuredCount <= 0 {
		return nil, domain.ErrInvalidInsuredCount
	}

	asOf := clock.Today(s.clock)
	if raw := strings.TrimSpace(req.AsOf); raw != "" {
		parsed, err := time.ParseInLocation(ratedomain.DateLayout, raw, time.UTC)
		if err != nil {
			return nil, domain.ErrInvalidAsOf
		}
		asOf = parsed
	}

	product, err := s.products.FindByID(ctx, tx, productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if !product.Active {
		return nil, domain.ErrProductInactive
	}
	plan, err := s.plans.FindByID(ctx, tx, planID.Int64())
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.ProductID != product.ID {
		return nil, domain.ErrPlanNotFound
	}
	if !plan.Active {
		return nil, domain.ErrPlanInactive
	}

	duration := domain.ParseDuration(req.Duration)
	if duration.Raw != "" && !plan.AllowsDuration(duration.Raw) {
		return nil, domain.ErrDurationNotAllowed
	}

	fixed, err := s.rates.FindFixed(ctx, tx, product.ID, plan.ID, asOf)
	if err != nil {
		return nil, err
	}

	var result *domain.Result
	if fixed != nil {
		result, err = s.fixedPremium(fixed, duration, req.InsuredCount)
	} else {
		result, err = s.calculatedPremium(ctx, tx, req, plan, asOf)
	}
	if err != nil {
		return nil, err
	}
	result.Duration = duration.Raw

	s.metrics.RecordQuote(ctx, result.PremiumType, result.TotalPremium.Mul(decimal.NewFromInt(100)).IntPart())
	return result, nil
}

// fixedPremium picks the monthly or annual amount of a fixed row and skips
// liability rating entirely.
func (s *Service) fixedPremium(rate *ratedomain.Rate, duration domain.Duration, insuredCount int) (*domain.Result, error) {
	amount, period := rate.AnnualPremium, domain.PeriodAnnual
	if !duration.IsAnnual() {
		amount, period = rate.MonthlyPremium, domain.PeriodMonthly
	}
	if !amount.Valid {
		return nil, domain.ErrFixedPremiumMissing
	}

	perPerson := money.Round2(amount.Decimal)
	return &domain.Result{
		PremiumPerPerson: money.NewAmount(perPerson),
		TotalPremium:     money.NewAmount(perPerson.Mul(decimal.NewFromInt(int64(insuredCount)))),
		InsuredCount:     insuredCount,
		PremiumType:      string(ratedomain.PremiumTypeFixed),
		PremiumDetails: []domain.Detail{{
			RateID:  snowflake.ID(rate.ID).String(),
			Period:  period,
			Premium: amount.Decimal,
		}},
		SkippedLiabilities: []domain.Skipped{},
	}, nil
}

// calculatedPremium resolves every selection in order. A selection without
// a rate in force is logged and left out of the sum.
func (s *Service) calculatedPremium(ctx context.Context, tx *gorm.DB, req domain.CalculateRequest, plan *plandomain.Plan, asOf time.Time) (*domain.Result, error) {
	if req.JobClass == nil {
		return nil, domain.ErrJobClassRequired
	}
	jobClass := *req.JobClass
	if !plan.AllowsJobClass(jobClass) {
		return nil, domain.ErrJobClassOutOfRange
	}
	if len(req.LiabilitySelections) == 0 {
		return nil, domain.ErrLiabilitySelectionsRequired
	}

	type selection struct {
		liabilityID int64
		coverage    decimal.Decimal
	}
	selections := make([]selection, 0, len(req.LiabilitySelections))
	seen := make(map[int64]struct{}, len(req.LiabilitySelections))
	for _, sel := range req.LiabilitySelections {
		liabilityID, err := snowflake.ParseString(strings.TrimSpace(sel.LiabilityID))
		if err != nil || liabilityID <= 0 {
			return nil, domain.ErrInvalidLiability
		}
		if _, dup := seen[liabilityID.Int64()]; dup {
			return nil, domain.ErrDuplicateLiability
		}
		seen[liabilityID.Int64()] = struct{}{}
		if !sel.CoverageAmount.IsPositive() {
			return nil, domain.ErrInvalidCoverageAmount
		}
		selections = append(selections, selection{liabilityID: liabilityID.Int64(), coverage: sel.CoverageAmount})
	}

	log := obslogger.WithContext(ctx, s.log)
	sum := decimal.Zero
	details := make([]domain.Detail, 0, len(selections))
	skipped := []domain.Skipped{}
	for _, sel := range selections {
		quote, err := s.rates.ResolveRate(ctx, tx, ratedomain.Query{
			ProductID:      plan.ProductID,
			PlanID:         &plan.ID,
			LiabilityID:    sel.liabilityID,
			JobClass:       jobClass,
			CoverageAmount: sel.coverage,
			AsOf:           asOf,
		})
		if errors.Is(err, ratedomain.ErrNotFound) {
			log.Warn("premium.rate_missing",
				zap.Int64("product_id", plan.ProductID),
				zap.Int64("plan_id", plan.ID),
				zap.Int64("liability_id", sel.liabilityID),
				zap.Int("job_class", jobClass),
				zap.String("coverage_amount", sel.coverage.String()),
				zap.String("as_of", asOf.Format(ratedomain.DateLayout)),
			)
			s.metrics.RecordRateMissing(ctx)
			skipped = append(skipped, domain.Skipped{
				LiabilityID:    snowflake.ID(sel.liabilityID).String(),
				CoverageAmount: sel.coverage,
				Reason:         domain.SkipReasonRateMissing,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		coverage, baseRate, factor := quote.CoverageAmount, quote.BaseRate, quote.RateFactor
		details = append(details, domain.Detail{
			RateID:         snowflake.ID(quote.RateID).String(),
			LiabilityID:    snowflake.ID(sel.liabilityID).String(),
			CoverageAmount: &coverage,
			BaseRate:       &baseRate,
			RateFactor:     &factor,
			Premium:        quote.Premium,
			LiabilityRef:   sel.liabilityID,
		})
		sum = sum.Add(quote.Premium)
	}

	perPerson := money.Round2(sum)
	return &domain.Result{
		PremiumPerPerson:   money.NewAmount(perPerson),
		TotalPremium:       money.NewAmount(perPerson.Mul(decimal.NewFromInt(int64(req.InsuredCount)))),
		InsuredCount:       req.InsuredCount,
		PremiumType:        string(ratedomain.PremiumTypeCalculated),
		PremiumDetails:     details,
		SkippedLiabilities: skipped,
	}, nil
}
