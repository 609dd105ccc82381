package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	premiumdomain "github.com/smallbiznis/polisa/internal/premium/domain"
	"github.com/smallbiznis/polisa/pkg/db/pagination"
	"github.com/smallbiznis/polisa/pkg/money"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	Get(ctx context.Context, id string) (*Detail, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
	QuotationSheet(ctx context.Context, id string) ([]byte, error)
}

// SubmissionLock narrows concurrent submissions of one company for one
// product. acquired is false when another submission holds the key.
type SubmissionLock interface {
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// QuotationRenderer turns a loaded application into a printable sheet.
type QuotationRenderer interface {
	RenderQuotation(sheet QuotationSheet) ([]byte, error)
}

type CompanyInfo struct {
	Name         string `json:"name"`
	CreditCode   string `json:"credit_code"`
	Province     string `json:"province"`
	City         string `json:"city"`
	Address      string `json:"address"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

type PlanInstanceRequest struct {
	PlanID              string                             `json:"plan_id"`
	JobClass            *int                               `json:"job_class"`
	Duration            string                             `json:"duration"`
	InsuredCount        int                                `json:"insured_count"`
	LiabilitySelections []premiumdomain.LiabilitySelection `json:"liability_selections"`
}

// InsuredPersonRequest belongs to plan_instances[PlanIndex]. A missing
// birth date is derived from an 18-digit resident id number.
type InsuredPersonRequest struct {
	Name      string `json:"name"`
	IDType    string `json:"id_type"`
	IDNumber  string `json:"id_number"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender"`
	PlanIndex int    `json:"plan_index"`
}

type CreateRequest struct {
	CompanyInfo    CompanyInfo            `json:"company_info"`
	ProductID      string                 `json:"product_id"`
	Channel        string                 `json:"channel"`
	PlanInstances  []PlanInstanceRequest  `json:"plan_instances"`
	EffectiveDate  string                 `json:"effective_date"`
	ExpiryDate     string                 `json:"expiry_date"`
	InsuredPersons []InsuredPersonRequest `json:"insured_persons"`
}

type CreateResponse struct {
	ApplicationID string       `json:"application_id"`
	ApplicationNo string       `json:"application_no"`
	Status        Status       `json:"status"`
	TotalPremium  money.Amount `json:"total_premium"`
	InsuredCount  int          `json:"insured_count"`
}

type ListRequest struct {
	Status    string
	ProductID string
	CompanyID string
	pagination.Pagination
}

type ListResponse struct {
	Items    []Response          `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type Response struct {
	ID            string       `json:"id"`
	ApplicationNo string       `json:"application_no"`
	CompanyID     string       `json:"company_id"`
	ProductID     string       `json:"product_id"`
	InsurerID     string       `json:"insurer_id"`
	Channel       string       `json:"channel"`
	Status        Status       `json:"status"`
	EffectiveDate *string      `json:"effective_date,omitempty"`
	ExpiryDate    *string      `json:"expiry_date,omitempty"`
	TotalPremium  money.Amount `json:"total_premium"`
	InsuredCount  int          `json:"insured_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type LiabilityLine struct {
	LiabilityID    string          `json:"liability_id"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
	Premium        decimal.Decimal `json:"premium"`
	RateID         *string         `json:"rate_id,omitempty"`
}

type PersonLine struct {
	Name      string  `json:"name"`
	IDType    string  `json:"id_type"`
	IDNumber  string  `json:"id_number"`
	BirthDate *string `json:"birth_date,omitempty"`
	Gender    string  `json:"gender,omitempty"`
}

type PlanInstanceDetail struct {
	ID               string          `json:"id"`
	PlanID           string          `json:"plan_id"`
	JobClass         *int            `json:"job_class,omitempty"`
	Duration         string          `json:"duration,omitempty"`
	InsuredCount     int             `json:"insured_count"`
	PremiumType      string          `json:"premium_type"`
	PremiumPerPerson money.Amount    `json:"premium_per_person"`
	TotalPremium     money.Amount    `json:"total_premium"`
	Liabilities      []LiabilityLine `json:"liability_selections"`
	InsuredPersons   []PersonLine    `json:"insured_persons"`
}

type Detail struct {
	Response
	Company       Company              `json:"company"`
	PlanInstances []PlanInstanceDetail `json:"plan_instances"`
}

// QuotationSheet is the printable view of an application with catalog
// names resolved.
type QuotationSheet struct {
	ApplicationNo string
	Status        Status
	CompanyName   string
	CreditCode    string
	ProductName   string
	EffectiveDate string
	ExpiryDate    string
	InsuredCount  int
	TotalPremium  decimal.Decimal
	IssuedAt      time.Time
	Plans         []QuotationPlan
}

type QuotationPlan struct {
	PlanName         string
	JobClass         string
	Duration         string
	InsuredCount     int
	PremiumPerPerson decimal.Decimal
	TotalPremium     decimal.Decimal
	Lines            []QuotationLine
}

type QuotationLine struct {
	LiabilityName  string
	CoverageAmount decimal.Decimal
	Premium        decimal.Decimal
}

// DateLayout is the wire format of effective, expiry and birth dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidProduct        = errors.New("invalid_product")
	ErrCompanyNameRequired   = errors.New("company_name_required")
	ErrCreditCodeRequired    = errors.New("company_credit_code_required")
	ErrProvinceRequired      = errors.New("company_province_required")
	ErrPlanInstancesRequired = errors.New("plan_instances_required")
	ErrInvalidPlan           = errors.New("invalid_plan")
	ErrInvalidInsuredCount   = errors.New("invalid_insured_count")
	ErrInvalidDate           = errors.New("invalid_date")
	ErrInvalidWindow         = errors.New("invalid_coverage_window")
	ErrPersonNameRequired    = errors.New("insured_person_name_required")
	ErrInvalidIDType         = errors.New("invalid_id_type")
	ErrInvalidIDNumber       = errors.New("invalid_id_number")
	ErrInvalidGender         = errors.New("invalid_gender")
	ErrInvalidPlanIndex      = errors.New("invalid_plan_index")
	ErrDuplicatePerson       = errors.New("duplicate_insured_person")
	ErrRosterExceedsCount    = errors.New("roster_exceeds_insured_count")
	ErrProductNotFound       = errors.New("product_not_found")
	ErrProductInactive       = errors.New("product_inactive")
	ErrSubmissionInProgress  = errors.New("submission_in_progress")
	ErrLockUnavailable       = errors.New("submission_lock_unavailable")
	ErrInvalidStatus         = errors.New("invalid_status")
	ErrInvalidTransition     = errors.New("invalid_status_transition")
	ErrRendererUnavailable   = errors.New("quotation_renderer_unavailable")
	ErrNotFound              = errors.New("application_not_found")
)
