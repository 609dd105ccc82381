package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polisa/internal/application/domain"
	"github.com/smallbiznis/polisa/internal/clock"
	"github.com/smallbiznis/polisa/internal/config"
	interceptdomain "github.com/smallbiznis/polisa/internal/intercept/domain"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polisa/internal/observability/metrics"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	premiumdomain "github.com/smallbiznis/polisa/internal/premium/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	"github.com/smallbiznis/polisa/pkg/db/pagination"
	"github.com/smallbiznis/polisa/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	Products    productdomain.Repository
	Plans       plandomain.Repository
	Liabilities liabilitydomain.Repository
	Intercept   interceptdomain.Service
	Premium     premiumdomain.Service
	Lock        domain.SubmissionLock    `optional:"true"`
	Renderer    domain.QuotationRenderer `optional:"true"`
	Metrics     *obsmetrics.Metrics      `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	defaultChan string
	repo        domain.Repository
	products    productdomain.Repository
	plans       plandomain.Repository
	liabilities liabilitydomain.Repository
	intercept   interceptdomain.Service
	premium     premiumdomain.Service
	lock        domain.SubmissionLock
	renderer    domain.QuotationRenderer
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("application.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		defaultChan: strings.TrimSpace(p.Cfg.DefaultChannel),
		repo:        p.Repo,
		products:    p.Products,
		plans:       p.Plans,
		liabilities: p.Liabilities,
		intercept:   p.Intercept,
		premium:     p.Premium,
		lock:        p.Lock,
		renderer:    p.Renderer,
		metrics:     p.Metrics,
	}
}

// submission is a validated CreateRequest.
type submission struct {
	productID     int64
	channel       string
	company       domain.Company
	effectiveDate *time.Time
	expiryDate    *time.Time
	instances     []instanceInput
	persons       []personInput
	insuredCount  int
}

type instanceInput struct {
	planID   int64
	request  domain.PlanInstanceRequest
	insured  int
	rostered int
}

type personInput struct {
	planIndex int
	name      string
	idType    string
	idNumber  string
	birthDate *time.Time
	gender    string
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.CreateResponse, error) {
	in, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, s.db, in.productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if !product.Active {
		return nil, domain.ErrProductInactive
	}

	rules, err := s.intercept.RulesForProduct(ctx, s.db, product.ID, in.channel)
	if err != nil {
		return nil, err
	}

	log := obslogger.WithContext(ctx, s.log)
	if s.lock != nil {
		key := "submission:" + strconv.FormatInt(product.ID, 10) + ":" + in.company.CreditCode
		release, acquired, err := s.lock.Acquire(ctx, key)
		if err != nil {
			log.Warn("submission lock failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrLockUnavailable, err)
		}
		if !acquired {
			return nil, domain.ErrSubmissionInProgress
		}
		defer release()
	}

	now := s.clock.Now().UTC()
	app := domain.Application{
		ID:            s.genID.Generate().Int64(),
		ApplicationNo: "APP-" + ulid.Make().String(),
		ProductID:     product.ID,
		InsurerID:     product.InsurerID,
		Channel:       in.channel,
		Status:        domain.StatusDraft,
		EffectiveDate: in.effectiveDate,
		ExpiryDate:    in.expiryDate,
		InsuredCount:  in.insuredCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company := in.company
		company.ID = s.genID.Generate().Int64()
		company.CreatedAt = now
		company.UpdatedAt = now
		if err := s.repo.UpsertCompany(ctx, tx, &company); err != nil {
			return err
		}
		app.CompanyID = company.ID

		if err := s.intercept.Evaluate(ctx, tx, rules, interceptContext(&app, company, in)); err != nil {
			return err
		}

		instances, selections, err := s.priceInstances(ctx, tx, &app, in, now)
		if err != nil {
			return err
		}
		persons := s.buildPersons(&app, instances, in.persons, now)

		if err := s.repo.Create(ctx, tx, &app); err != nil {
			return err
		}
		if err := s.repo.CreatePlanInstances(ctx, tx, instances); err != nil {
			return err
		}
		if err := s.repo.CreateLiabilitySelections(ctx, tx, selections); err != nil {
			return err
		}
		return s.repo.CreateInsuredPersons(ctx, tx, persons)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordApplicationCreated(ctx, app.Channel)
	log.Info("application created",
		zap.String("application_id", snowflake.ID(app.ID).String()),
		zap.String("application_no", app.ApplicationNo),
		zap.Int64("product_id", app.ProductID),
		zap.String("channel", app.Channel),
		zap.Int("insured_count", app.InsuredCount),
		zap.String("total_premium", app.TotalPremium.StringFixed(2)),
	)

	return &domain.CreateResponse{
		ApplicationID: snowflake.ID(app.ID).String(),
		ApplicationNo: app.ApplicationNo,
		Status:        app.Status,
		TotalPremium:  money.NewAmount(app.TotalPremium),
		InsuredCount:  app.InsuredCount,
	}, nil
}

func interceptContext(app *domain.Application, company domain.Company, in *submission) interceptdomain.ApplicationContext {
	persons := make([]interceptdomain.Person, 0, len(in.persons))
	for _, p := range in.persons {
		persons = append(persons, interceptdomain.Person{
			Name:      p.name,
			IDNumber:  p.idNumber,
			BirthDate: p.birthDate,
		})
	}
	return interceptdomain.ApplicationContext{
		ProductID: app.ProductID,
		InsurerID: app.InsurerID,
		Company: interceptdomain.Company{
			Name:     company.Name,
			Province: company.Province,
			City:     company.City,
		},
		InsuredCount: in.insuredCount,
		Persons:      persons,
	}
}

// priceInstances quotes every plan instance on tx and sets the application
// total to the sum of instance totals.
func (s *Service) priceInstances(ctx context.Context, tx *gorm.DB, app *domain.Application, in *submission, now time.Time) ([]domain.PlanInstance, []domain.LiabilitySelection, error) {
	instances := make([]domain.PlanInstance, 0, len(in.instances))
	var selections []domain.LiabilitySelection
	total := decimal.Zero

	for _, inst := range in.instances {
		quote, err := s.premium.CalculateTx(ctx, tx, premiumdomain.CalculateRequest{
			ProductID:           snowflake.ID(app.ProductID).String(),
			PlanID:              snowflake.ID(inst.planID).String(),
			LiabilitySelections: inst.request.LiabilitySelections,
			JobClass:            inst.request.JobClass,
			InsuredCount:        inst.insured,
			Duration:            inst.request.Duration,
		})
		if err != nil {
			return nil, nil, err
		}

		row := domain.PlanInstance{
			ID:               s.genID.Generate().Int64(),
			ApplicationID:    app.ID,
			PlanID:           inst.planID,
			JobClass:         inst.request.JobClass,
			Duration:         quote.Duration,
			InsuredCount:     inst.insured,
			PremiumType:      quote.PremiumType,
			PremiumPerPerson: quote.PremiumPerPerson.Decimal,
			TotalPremium:     quote.TotalPremium.Decimal,
			CreatedAt:        now,
		}
		instances = append(instances, row)
		total = total.Add(quote.TotalPremium.Decimal)

		priced := make(map[int64]premiumdomain.Detail, len(quote.PremiumDetails))
		for _, d := range quote.PremiumDetails {
			if d.LiabilityRef != 0 {
				priced[d.LiabilityRef] = d
			}
		}
		for _, sel := range inst.request.LiabilitySelections {
			liabilityID, err := snowflake.ParseString(strings.TrimSpace(sel.LiabilityID))
			if err != nil {
				return nil, nil, premiumdomain.ErrInvalidLiability
			}
			line := domain.LiabilitySelection{
				ID:             s.genID.Generate().Int64(),
				ApplicationID:  app.ID,
				PlanInstanceID: row.ID,
				LiabilityID:    liabilityID.Int64(),
				CoverageAmount: sel.CoverageAmount,
				Premium:        decimal.Zero,
				CreatedAt:      now,
			}
			if d, ok := priced[liabilityID.Int64()]; ok {
				line.Premium = d.Premium
				if rateID, err := snowflake.ParseString(d.RateID); err == nil {
					id := rateID.Int64()
					line.RateID = &id
				}
			}
			selections = append(selections, line)
		}
	}

	app.TotalPremium = money.Round2(total)
	return instances, selections, nil
}

func (s *Service) buildPersons(app *domain.Application, instances []domain.PlanInstance, persons []personInput, now time.Time) []domain.InsuredPerson {
	rows := make([]domain.InsuredPerson, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, domain.InsuredPerson{
			ID:             s.genID.Generate().Int64(),
			ApplicationID:  app.ID,
			PlanInstanceID: instances[p.planIndex].ID,
			Name:           p.name,
			IDType:         p.idType,
			IDNumber:       p.idNumber,
			BirthDate:      p.birthDate,
			Gender:         p.gender,
			CreatedAt:      now,
		})
	}
	return rows
}

func (s *Service) validate(req domain.CreateRequest) (*submission, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, domain.ErrInvalidProduct
	}

	company := domain.Company{
		Name:         strings.TrimSpace(req.CompanyInfo.Name),
		CreditCode:   strings.ToUpper(strings.TrimSpace(req.CompanyInfo.CreditCode)),
		Province:     strings.TrimSpace(req.CompanyInfo.Province),
		City:         strings.TrimSpace(req.CompanyInfo.City),
		Address:      strings.TrimSpace(req.CompanyInfo.Address),
		ContactName:  strings.TrimSpace(req.CompanyInfo.ContactName),
		ContactPhone: strings.TrimSpace(req.CompanyInfo.ContactPhone),
		ContactEmail: strings.TrimSpace(req.CompanyInfo.ContactEmail),
	}
	switch {
	case company.Name == "":
		return nil, domain.ErrCompanyNameRequired
	case company.CreditCode == "":
		return nil, domain.ErrCreditCodeRequired
	case company.Province == "":
		return nil, domain.ErrProvinceRequired
	}

	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		return nil, err
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if effective != nil && expiry != nil && !expiry.After(*effective) {
		return nil, domain.ErrInvalidWindow
	}

	if len(req.PlanInstances) == 0 {
		return nil, domain.ErrPlanInstancesRequired
	}
	instances := make([]instanceInput, 0, len(req.PlanInstances))
	for _, item := range req.PlanInstances {
		planID, err := parseID(item.PlanID)
		if err != nil {
			return nil, domain.ErrInvalidPlan
		}
		if item.InsuredCount < 0 {
			return nil, domain.ErrInvalidInsuredCount
		}
		instances = append(instances, instanceInput{planID: planID, request: item, insured: item.InsuredCount})
	}

	persons := make([]personInput, 0, len(req.InsuredPersons))
	seen := make(map[string]struct{}, len(req.InsuredPersons))
	for _, item := range req.InsuredPersons {
		person, err := validatePerson(item)
		if err != nil {
			return nil, err
		}
		if person.planIndex < 0 || person.planIndex >= len(instances) {
			return nil, domain.ErrInvalidPlanIndex
		}
		if person.idNumber != "" {
			key := person.idType + ":" + person.idNumber
			if _, dup := seen[key]; dup {
				return nil, domain.ErrDuplicatePerson
			}
			seen[key] = struct{}{}
		}
		instances[person.planIndex].rostered++
		persons = append(persons, person)
	}

	total := 0
	for i := range instances {
		inst := &instances[i]
		if inst.insured == 0 {
			inst.insured = inst.rostered
		}
		if inst.insured <= 0 {
			return nil, domain.ErrInvalidInsuredCount
		}
		if inst.rostered > inst.insured {
			return nil, domain.ErrRosterExceedsCount
		}
		total += inst.insured
	}

	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = s.defaultChan
	}

	return &submission{
		productID:     productID,
		channel:       channel,
		company:       company,
		effectiveDate: effective,
		expiryDate:    expiry,
		instances:     instances,
		persons:       persons,
		insuredCount:  total,
	}, nil
}

func validatePerson(item domain.InsuredPersonRequest) (personInput, error) {
	p := personInput{
		planIndex: item.PlanIndex,
		name:      strings.TrimSpace(item.Name),
		idType:    strings.ToLower(strings.TrimSpace(item.IDType)),
		idNumber:  strings.ToUpper(strings.TrimSpace(item.IDNumber)),
		gender:    strings.ToUpper(strings.TrimSpace(item.Gender)),
	}
	if p.name == "" {
		return p, domain.ErrPersonNameRequired
	}
	if p.idType == "" {
		p.idType = domain.IDTypeIDCard
	}
	switch p.idType {
	case domain.IDTypeIDCard:
		if p.idNumber != "" && !domain.ValidIDCard(p.idNumber) {
			return p, domain.ErrInvalidIDNumber
		}
	case domain.IDTypePassport, domain.IDTypeOther:
	default:
		return p, domain.ErrInvalidIDType
	}
	switch p.gender {
	case "", domain.GenderMale, domain.GenderFemale:
	default:
		return p, domain.ErrInvalidGender
	}

	birth, err := parseDate(item.BirthDate)
	if err != nil {
		return p, err
	}
	if birth == nil && p.idType == domain.IDTypeIDCard && p.idNumber != "" {
		if derived, ok := domain.BirthDateFromIDCard(p.idNumber); ok {
			birth = &derived
		}
	}
	p.birthDate = birth
	if p.gender == "" && p.idType == domain.IDTypeIDCard {
		if g, ok := domain.GenderFromIDCard(p.idNumber); ok {
			p.gender = g
		}
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Detail, error) {
	appID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	app, err := s.repo.FindByID(ctx, s.db, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}

	company, err := s.repo.FindCompany(ctx, s.db, app.CompanyID)
	if err != nil {
		return nil, err
	}
	instances, err := s.repo.ListPlanInstances(ctx, s.db, app.ID)
	if err != nil {
		return nil, err
	}
	selections, err := s.repo.ListLiabilitySelections(ctx, s.db, app.ID)
	if err != nil {
		return nil, err
	}
	persons, err := s.repo.ListInsuredPersons(ctx, s.db, app.ID)
	if err != nil {
		return nil, err
	}

	detail := &domain.Detail{Response: toResponse(*app)}
	if company != nil {
		detail.Company = *company
	}

	byInstance := make(map[int64]*domain.PlanInstanceDetail, len(instances))
	detail.PlanInstances = make([]domain.PlanInstanceDetail, 0, len(instances))
	for _, inst := range instances {
		detail.PlanInstances = append(detail.PlanInstances, domain.PlanInstanceDetail{
			ID:               snowflake.ID(inst.ID).String(),
			PlanID:           snowflake.ID(inst.PlanID).String(),
			JobClass:         inst.JobClass,
			Duration:         inst.Duration,
			InsuredCount:     inst.InsuredCount,
			PremiumType:      inst.PremiumType,
			PremiumPerPerson: money.NewAmount(inst.PremiumPerPerson),
			TotalPremium:     money.NewAmount(inst.TotalPremium),
			Liabilities:      []domain.LiabilityLine{},
			InsuredPersons:   []domain.PersonLine{},
		})
	}
	for i := range detail.PlanInstances {
		byInstance[instances[i].ID] = &detail.PlanInstances[i]
	}
	for _, sel := range selections {
		target, ok := byInstance[sel.PlanInstanceID]
		if !ok {
			continue
		}
		line := domain.LiabilityLine{
			LiabilityID:    snowflake.ID(sel.LiabilityID).String(),
			CoverageAmount: sel.CoverageAmount,
			Premium:        sel.Premium,
		}
		if sel.RateID != nil {
			rateID := snowflake.ID(*sel.RateID).String()
			line.RateID = &rateID
		}
		target.Liabilities = append(target.Liabilities, line)
	}
	for _, p := range persons {
		target, ok := byInstance[p.PlanInstanceID]
		if !ok {
			continue
		}
		target.InsuredPersons = append(target.InsuredPersons, domain.PersonLine{
			Name:      p.Name,
			IDType:    p.IDType,
			IDNumber:  p.IDNumber,
			BirthDate: formatDate(p.BirthDate),
			Gender:    p.Gender,
		})
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{Limit: req.Limit() + 1}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(strings.ToLower(raw))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if strings.TrimSpace(req.ProductID) != "" {
		id, err := parseID(req.ProductID)
		if err != nil {
			return nil, domain.ErrInvalidProduct
		}
		filter.ProductID = id
	}
	if strings.TrimSpace(req.CompanyID) != "" {
		id, err := parseID(req.CompanyID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.CompanyID = id
	}
	cursor, err := pagination.DecodeCursor(req.PageToken)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		id, err := parseID(cursor.ID)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		filter.BeforeID = id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	page, info, err := pagination.Page(items, req.Limit(), func(a domain.Application) string {
		return snowflake.ID(a.ID).String()
	})
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{Items: make([]domain.Response, 0, len(page)), PageInfo: info}
	for _, app := range page {
		resp.Items = append(resp.Items, toResponse(app))
	}
	return resp, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Response, error) {
	appID, err := parseID(req.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	next := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var updated *domain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.repo.FindByID(ctx, tx, appID)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound
		}
		if !app.Status.CanTransitionTo(next) {
			return domain.ErrInvalidTransition
		}
		ok, err := s.repo.UpdateStatus(ctx, tx, app.ID, app.Status, next, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		updated, err = s.repo.FindByID(ctx, tx, app.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	obslogger.WithContext(ctx, s.log).Info("application status changed",
		zap.String("application_id", snowflake.ID(updated.ID).String()),
		zap.String("status", string(updated.Status)),
	)
	resp := toResponse(*updated)
	return &resp, nil
}

func (s *Service) QuotationSheet(ctx context.Context, id string) ([]byte, error) {
	if s.renderer == nil {
		return nil, domain.ErrRendererUnavailable
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sheet := domain.QuotationSheet{
		ApplicationNo: detail.ApplicationNo,
		Status:        detail.Status,
		CompanyName:   detail.Company.Name,
		CreditCode:    detail.Company.CreditCode,
		InsuredCount:  detail.InsuredCount,
		TotalPremium:  detail.TotalPremium.Decimal,
		IssuedAt:      s.clock.Now().UTC(),
	}
	if detail.EffectiveDate != nil {
		sheet.EffectiveDate = *detail.EffectiveDate
	}
	if detail.ExpiryDate != nil {
		sheet.ExpiryDate = *detail.ExpiryDate
	}

	productID, _ := parseID(detail.ProductID)
	product, err := s.products.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product != nil {
		sheet.ProductName = product.Name
	}

	var liabilityIDs []int64
	for _, inst := range detail.PlanInstances {
		for _, line := range inst.Liabilities {
			if id, err := parseID(line.LiabilityID); err == nil {
				liabilityIDs = append(liabilityIDs, id)
			}
		}
	}
	names := map[int64]string{}
	if len(liabilityIDs) > 0 {
		items, err := s.liabilities.FindByIDs(ctx, s.db, liabilityIDs)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			names[item.ID] = item.Name
		}
	}

	for _, inst := range detail.PlanInstances {
		plan := domain.QuotationPlan{
			Duration:         inst.Duration,
			InsuredCount:     inst.InsuredCount,
			PremiumPerPerson: inst.PremiumPerPerson.Decimal,
			TotalPremium:     inst.TotalPremium.Decimal,
		}
		if inst.JobClass != nil {
			plan.JobClass = strconv.Itoa(*inst.JobClass)
		}
		planID, _ := parseID(inst.PlanID)
		if p, err := s.plans.FindByID(ctx, s.db, planID); err != nil {
			return nil, err
		} else if p != nil {
			plan.PlanName = p.Name
		}
		for _, line := range inst.Liabilities {
			liabilityID, _ := parseID(line.LiabilityID)
			plan.Lines = append(plan.Lines, domain.QuotationLine{
				LiabilityName:  names[liabilityID],
				CoverageAmount: line.CoverageAmount,
				Premium:        line.Premium,
			})
		}
		sheet.Plans = append(sheet.Plans, plan)
	}

	return s.renderer.RenderQuotation(sheet)
}

func parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id.Int64(), nil
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, value, time.UTC)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(domain.DateLayout)
	return &v
}

func toResponse(app domain.Application) domain.Response {
	return domain.Response{
		ID:            snowflake.ID(app.ID).String(),
		ApplicationNo: app.ApplicationNo,
		CompanyID:     snowflake.ID(app.CompanyID).String(),
		ProductID:     snowflake.ID(app.ProductID).String(),
		InsurerID:     snowflake.ID(app.InsurerID).String(),
		Channel:       app.Channel,
		Status:        app.Status,
		EffectiveDate: formatDate(app.EffectiveDate),
		ExpiryDate:    formatDate(app.ExpiryDate),
		TotalPremium:  money.NewAmount(app.TotalPremium),
		InsuredCount:  app.InsuredCount,
		CreatedAt:     app.CreatedAt,
		UpdatedAt:     app.UpdatedAt,
	}
}
