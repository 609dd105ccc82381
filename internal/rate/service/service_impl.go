package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polisa/internal/clock"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	"github.com/smallbiznis/polisa/internal/rate/domain"
	"github.com/smallbiznis/polisa/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	Products    productdomain.Repository
	Plans       plandomain.Repository
	Liabilities liabilitydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	products    productdomain.Repository
	plans       plandomain.Repository
	liabilities liabilitydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("rate.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		products:    p.Products,
		plans:       p.Plans,
		liabilities: p.Liabilities,
	}
}

func (s *Service) ResolveRate(ctx context.Context, db *gorm.DB, q domain.Query) (*domain.Quote, error) {
	if db == nil {
		db = s.db
	}
	if q.AsOf.IsZero() {
		q.AsOf = clock.Today(s.clock)
	}
	q.AsOf = q.AsOf.UTC()

	rate, err := s.repo.FindCalculated(ctx, db, q)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrNotFound
	}

	factor := decimal.NewFromInt(1)
	if rate.RateFactor.Valid {
		factor = rate.RateFactor.Decimal
	}
	return &domain.Quote{
		RateID:         rate.ID,
		ProductID:      rate.ProductID,
		LiabilityID:    q.LiabilityID,
		JobClass:       q.JobClass,
		CoverageAmount: q.CoverageAmount,
		BaseRate:       rate.BaseRate.Decimal,
		RateFactor:     factor,
		MinPremium:     rate.MinPremium,
		MaxPremium:     rate.MaxPremium,
		Premium:        rate.Premium(),
	}, nil
}

func (s *Service) FindFixed(ctx context.Context, db *gorm.DB, productID, planID int64, asOf time.Time) (*domain.Rate, error) {
	if db == nil {
		db = s.db
	}
	if asOf.IsZero() {
		asOf = clock.Today(s.clock)
	}
	return s.repo.FindFixed(ctx, db, productID, planID, asOf.UTC())
}

func (s *Service) Lookup(ctx context.Context, req domain.LookupRequest) (*domain.QuoteResponse, error) {
	productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	liabilityID, err := parseID(req.LiabilityID, domain.ErrInvalidLiability)
	if err != nil {
		return nil, err
	}
	jobClass, err := strconv.Atoi(strings.TrimSpace(req.JobClass))
	if err != nil || jobClass < 1 {
		return nil, domain.ErrInvalidJobClass
	}
	coverage, err := decimal.NewFromString(strings.TrimSpace(req.CoverageAmount))
	if err != nil || !coverage.IsPositive() {
		return nil, domain.ErrInvalidCoverageAmount
	}

	q := domain.Query{
		ProductID:      productID,
		LiabilityID:    liabilityID,
		JobClass:       jobClass,
		CoverageAmount: coverage,
		AsOf:           clock.Today(s.clock),
	}
	if raw := strings.TrimSpace(req.PlanID); raw != "" {
		planID, err := parseID(raw, domain.ErrInvalidPlan)
		if err != nil {
			return nil, err
		}
		q.PlanID = &planID
	}
	if date, err := parseDate(req.AsOf); err != nil {
		return nil, err
	} else if date != nil {
		q.AsOf = *date
	}

	quote, err := s.ResolveRate(ctx, s.db, q)
	if err != nil {
		return nil, err
	}
	return &domain.QuoteResponse{
		RateID:         snowflake.ID(quote.RateID).String(),
		ProductID:      snowflake.ID(quote.ProductID).String(),
		LiabilityID:    snowflake.ID(quote.LiabilityID).String(),
		JobClass:       quote.JobClass,
		CoverageAmount: quote.CoverageAmount,
		BaseRate:       quote.BaseRate,
		RateFactor:     quote.RateFactor,
		MinPremium:     quote.MinPremium,
		MaxPremium:     quote.MaxPremium,
		Premium:        money.NewAmount(quote.Premium),
		AsOf:           q.AsOf.Format(domain.DateLayout),
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{IncludeSuppressed: req.IncludeSuppressed}
	var err error
	if filter.ProductID, err = parseOptionalID(req.ProductID, domain.ErrInvalidProduct); err != nil {
		return nil, err
	}
	if filter.PlanID, err = parseOptionalID(req.PlanID, domain.ErrInvalidPlan); err != nil {
		return nil, err
	}
	if filter.LiabilityID, err = parseOptionalID(req.LiabilityID, domain.ErrInvalidLiability); err != nil {
		return nil, err
	}
	if raw := strings.ToLower(strings.TrimSpace(req.PremiumType)); raw != "" {
		premiumType := domain.PremiumType(raw)
		if !premiumType.Valid() {
			return nil, domain.ErrInvalidPremiumType
		}
		filter.PremiumType = premiumType
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}

	premiumType := domain.PremiumType(strings.ToLower(strings.TrimSpace(req.PremiumType)))
	if !premiumType.Valid() {
		return nil, domain.ErrInvalidPremiumType
	}

	now := s.clock.Now().UTC()
	rate := &domain.Rate{
		ID:          s.genID.Generate().Int64(),
		ProductID:   product.ID,
		PremiumType: premiumType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if raw := strings.TrimSpace(req.PlanID); raw != "" {
		planID, err := parseID(raw, domain.ErrInvalidPlan)
		if err != nil {
			return nil, err
		}
		plan, err := s.plans.FindByID(ctx, s.db, planID)
		if err != nil {
			return nil, err
		}
		if plan == nil || plan.ProductID != product.ID {
			return nil, domain.ErrInvalidPlan
		}
		rate.PlanID = &plan.ID
	}

	switch premiumType {
	case domain.PremiumTypeFixed:
		err = s.fillFixed(req, rate)
	default:
		err = s.fillCalculated(ctx, req, product, rate)
	}
	if err != nil {
		return nil, err
	}

	if rate.EffectiveDate, err = parseDate(req.EffectiveDate); err != nil {
		return nil, err
	}
	if rate.ExpiryDate, err = parseDate(req.ExpiryDate); err != nil {
		return nil, err
	}
	if rate.EffectiveDate != nil && rate.ExpiryDate != nil && rate.ExpiryDate.Before(*rate.EffectiveDate) {
		return nil, domain.ErrInvalidWindow
	}

	if err := s.repo.Create(ctx, s.db, rate); err != nil {
		return nil, err
	}
	s.log.Info("rate created",
		zap.Int64("rate_id", rate.ID),
		zap.Int64("product_id", rate.ProductID),
		zap.String("premium_type", string(rate.PremiumType)),
	)
	resp := toResponse(rate)
	return &resp, nil
}

func (s *Service) fillFixed(req domain.CreateRequest, rate *domain.Rate) error {
	if rate.PlanID == nil {
		return domain.ErrInvalidPlan
	}
	if strings.TrimSpace(req.LiabilityID) != "" || req.JobClass != nil || req.CoverageAmount != nil ||
		req.BaseRate != nil || req.RateFactor != nil || req.MinPremium != nil || req.MaxPremium != nil {
		return domain.ErrFieldNotAllowed
	}
	if req.MonthlyPremium == nil || req.AnnualPremium == nil ||
		req.MonthlyPremium.IsNegative() || req.AnnualPremium.IsNegative() {
		return domain.ErrInvalidFixedPremium
	}
	rate.MonthlyPremium = decimal.NewNullDecimal(*req.MonthlyPremium)
	rate.AnnualPremium = decimal.NewNullDecimal(*req.AnnualPremium)
	return nil
}

func (s *Service) fillCalculated(ctx context.Context, req domain.CreateRequest, product *productdomain.Product, rate *domain.Rate) error {
	if req.MonthlyPremium != nil || req.AnnualPremium != nil {
		return domain.ErrFieldNotAllowed
	}

	liabilityID, err := parseID(req.LiabilityID, domain.ErrInvalidLiability)
	if err != nil {
		return err
	}
	liability, err := s.liabilities.FindByID(ctx, s.db, liabilityID)
	if err != nil {
		return err
	}
	if liability == nil || liability.InsurerID != product.InsurerID {
		return domain.ErrInvalidLiability
	}
	rate.LiabilityID = &liability.ID

	if req.JobClass == nil || *req.JobClass < 1 {
		return domain.ErrInvalidJobClass
	}
	jobClass := *req.JobClass
	rate.JobClass = &jobClass

	if req.CoverageAmount == nil || !req.CoverageAmount.IsPositive() {
		return domain.ErrInvalidCoverageAmount
	}
	rate.CoverageAmount = decimal.NewNullDecimal(*req.CoverageAmount)

	if req.BaseRate == nil || req.BaseRate.IsNegative() {
		return domain.ErrInvalidBaseRate
	}
	rate.BaseRate = decimal.NewNullDecimal(*req.BaseRate)

	factor := decimal.NewFromInt(1)
	if req.RateFactor != nil {
		factor = *req.RateFactor
	}
	if !factor.IsPositive() {
		return domain.ErrInvalidRateFactor
	}
	rate.RateFactor = decimal.NewNullDecimal(factor)

	if req.MinPremium != nil {
		if req.MinPremium.IsNegative() {
			return domain.ErrInvalidPremiumBounds
		}
		rate.MinPremium = decimal.NewNullDecimal(*req.MinPremium)
	}
	if req.MaxPremium != nil {
		if req.MaxPremium.IsNegative() {
			return domain.ErrInvalidPremiumBounds
		}
		rate.MaxPremium = decimal.NewNullDecimal(*req.MaxPremium)
	}
	if rate.MinPremium.Valid && rate.MaxPremium.Valid && rate.MinPremium.Decimal.GreaterThan(rate.MaxPremium.Decimal) {
		return domain.ErrInvalidPremiumBounds
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	rateID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	rate, err := s.repo.FindByID(ctx, s.db, rateID)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(rate)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	rateID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, rateID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.log.Info("rate deleted", zap.Int64("rate_id", rateID))
	return nil
}

func parseID(raw string, invalid error) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id.Int64(), nil
}

func parseOptionalID(raw string, invalid error) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(raw, invalid)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(domain.DateLayout, raw, time.UTC)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &parsed, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.UTC().Format(domain.DateLayout)
	return &value
}

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	value := snowflake.ID(*id).String()
	return &value
}

func toResponse(r *domain.Rate) domain.Response {
	return domain.Response{
		ID:             snowflake.ID(r.ID).String(),
		ProductID:      snowflake.ID(r.ProductID).String(),
		PremiumType:    r.PremiumType,
		PlanID:         idString(r.PlanID),
		LiabilityID:    idString(r.LiabilityID),
		JobClass:       r.JobClass,
		CoverageAmount: r.CoverageAmount,
		BaseRate:       r.BaseRate,
		RateFactor:     r.RateFactor,
		MinPremium:     r.MinPremium,
		MaxPremium:     r.MaxPremium,
		MonthlyPremium: r.MonthlyPremium,
		AnnualPremium:  r.AnnualPremium,
		EffectiveDate:  formatDate(r.EffectiveDate),
		ExpiryDate:     formatDate(r.ExpiryDate),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
