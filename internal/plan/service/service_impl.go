package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polisa/internal/clock"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	"github.com/smallbiznis/polisa/internal/plan/domain"
	premiumdomain "github.com/smallbiznis/polisa/internal/premium/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	"github.com/smallbiznis/polisa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
	Liabilities liabilitydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	products    productdomain.Repository
	liabilities liabilitydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("plan.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		products:    p.Products,
		liabilities: p.Liabilities,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	product, err := s.products.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = slug.Make(name)
	}
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	jobMin, jobMax := 1, 6
	if req.JobClassMin != nil {
		jobMin = *req.JobClassMin
	}
	if req.JobClassMax != nil {
		jobMax = *req.JobClassMax
	}
	if jobMin < 1 || jobMax < jobMin {
		return nil, domain.ErrInvalidJobClassRange
	}

	durations, err := normalizeDurations(req.Durations)
	if err != nil {
		return nil, err
	}

	paymentType := strings.ToLower(strings.TrimSpace(req.PaymentType))
	if paymentType == "" {
		paymentType = domain.PaymentTypeAnnual
	}
	switch paymentType {
	case domain.PaymentTypeAnnual, domain.PaymentTypeMonthly, domain.PaymentTypeSingle:
	default:
		return nil, domain.ErrInvalidPaymentType
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	plan := &domain.Plan{
		ID:          s.genID.Generate().Int64(),
		ProductID:   product.ID,
		Code:        code,
		Name:        name,
		JobClassMin: jobMin,
		JobClassMax: jobMax,
		Durations:   datatypes.NewJSONSlice(durations),
		PaymentType: paymentType,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}

	s.log.Info("plan created", zap.Int64("plan_id", plan.ID), zap.Int64("product_id", plan.ProductID))
	resp := toResponse(plan)
	return &resp, nil
}

func (s *Service) ListByProduct(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	items, err := s.repo.ListByProduct(ctx, s.db, productID.Int64(), req.Active)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	plan, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(plan)
	return &resp, nil
}

func (s *Service) BindLiability(ctx context.Context, req domain.BindLiabilityRequest) (*domain.LiabilityResponse, error) {
	plan, err := s.find(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, s.db, plan.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}

	liabilityID, err := snowflake.ParseString(strings.TrimSpace(req.LiabilityID))
	if err != nil || liabilityID == 0 {
		return nil, domain.ErrInvalidLiability
	}
	liability, err := s.liabilities.FindByID(ctx, s.db, liabilityID.Int64())
	if err != nil {
		return nil, err
	}
	if liability == nil || liability.InsurerID != product.InsurerID {
		return nil, domain.ErrInvalidLiability
	}

	options := make([]string, 0, len(req.CoverageOptions))
	seen := make(map[string]struct{}, len(req.CoverageOptions))
	for _, raw := range req.CoverageOptions {
		opt, ok := canonicalCoverage(raw)
		if !ok {
			return nil, domain.ErrInvalidCoverageOptions
		}
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}
		options = append(options, opt)
	}
	if len(options) == 0 {
		return nil, domain.ErrInvalidCoverageOptions
	}

	var defaultCoverage *string
	if req.DefaultCoverage != nil {
		if strings.TrimSpace(*req.DefaultCoverage) != "" {
			value, ok := canonicalCoverage(*req.DefaultCoverage)
			if !ok {
				return nil, domain.ErrInvalidDefaultCoverage
			}
			if _, member := seen[value]; !member {
				return nil, domain.ErrInvalidDefaultCoverage
			}
			defaultCoverage = &value
		}
	}

	now := s.clock.Now().UTC()
	item := &domain.PlanLiability{
		ID:              s.genID.Generate().Int64(),
		PlanID:          plan.ID,
		LiabilityID:     liability.ID,
		Required:        req.Required,
		CoverageOptions: datatypes.NewJSONSlice(options),
		DefaultCoverage: defaultCoverage,
		DisplayOrder:    req.DisplayOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.UpsertLiability(ctx, s.db, item); err != nil {
		return nil, err
	}

	// re-read: an existing binding keeps its id and created_at
	items, err := s.repo.ListLiabilities(ctx, s.db, plan.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].LiabilityID == liability.ID {
			resp := toLiabilityResponse(&items[i], liability)
			return &resp, nil
		}
	}
	resp := toLiabilityResponse(item, liability)
	return &resp, nil
}

func (s *Service) ListLiabilities(ctx context.Context, planID string) ([]domain.LiabilityResponse, error) {
	plan, err := s.find(ctx, planID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListLiabilities(ctx, s.db, plan.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.LiabilityID)
	}
	liabilities, err := s.liabilities.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*liabilitydomain.Liability, len(liabilities))
	for i := range liabilities {
		byID[liabilities[i].ID] = &liabilities[i]
	}

	resp := make([]domain.LiabilityResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toLiabilityResponse(&items[i], byID[items[i].LiabilityID]))
	}
	return resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Plan, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || planID == 0 {
		return nil, domain.ErrInvalidID
	}
	plan, err := s.repo.FindByID(ctx, s.db, planID.Int64())
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return plan, nil
}

// canonicalCoverage renders a coverage option the way rate rows key it,
// so "100000.00" and "100000" are the same option.
func canonicalCoverage(raw string) (string, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !d.IsPositive() {
		return "", false
	}
	return d.String(), true
}

// normalizeDurations trims, dedupes and rejects strings the premium
// calculation cannot classify.
func normalizeDurations(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" || !premiumdomain.ParseDuration(value).Known() {
			return nil, domain.ErrInvalidDurations
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out, nil
}

func toResponse(p *domain.Plan) domain.Response {
	durations := []string(p.Durations)
	if durations == nil {
		durations = []string{}
	}
	return domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		ProductID:   snowflake.ID(p.ProductID).String(),
		Code:        p.Code,
		Name:        p.Name,
		JobClassMin: p.JobClassMin,
		JobClassMax: p.JobClassMax,
		Durations:   durations,
		PaymentType: p.PaymentType,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toLiabilityResponse(item *domain.PlanLiability, liability *liabilitydomain.Liability) domain.LiabilityResponse {
	options := []string(item.CoverageOptions)
	if options == nil {
		options = []string{}
	}
	resp := domain.LiabilityResponse{
		ID:              snowflake.ID(item.ID).String(),
		PlanID:          snowflake.ID(item.PlanID).String(),
		LiabilityID:     snowflake.ID(item.LiabilityID).String(),
		Required:        item.Required,
		CoverageOptions: options,
		DefaultCoverage: item.DefaultCoverage,
		DisplayOrder:    item.DisplayOrder,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
	if liability != nil {
		resp.LiabilityCode = liability.Code
		resp.LiabilityName = liability.Name
		resp.Unit = string(liability.Unit)
		resp.IsAdditional = liability.IsAdditional
	}
	return resp
}
