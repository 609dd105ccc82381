package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polisa/pkg/money"
	"gorm.io/gorm"
)

type Service interface {
	// ResolveRate prices one liability selection. It returns ErrNotFound
	// when no calculated row covers the query date.
	ResolveRate(ctx context.Context, db *gorm.DB, q Query) (*Quote, error)
	// FindFixed returns the fixed premium row of a plan, or nil when the
	// plan is rated per liability.
	FindFixed(ctx context.Context, db *gorm.DB, productID, planID int64, asOf time.Time) (*Rate, error)

	Lookup(ctx context.Context, req LookupRequest) (*QuoteResponse, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error
}

// Quote is the outcome of a calculated rate lookup. Premium is unrounded.
type Quote struct {
	RateID         int64
	ProductID      int64
	LiabilityID    int64
	JobClass       int
	CoverageAmount decimal.Decimal
	BaseRate       decimal.Decimal
	RateFactor     decimal.Decimal
	MinPremium     decimal.NullDecimal
	MaxPremium     decimal.NullDecimal
	Premium        decimal.Decimal
}

type LookupRequest struct {
	ProductID      string
	PlanID         string
	LiabilityID    string
	JobClass       string
	CoverageAmount string
	AsOf           string
}

type QuoteResponse struct {
	RateID         string              `json:"rate_id"`
	ProductID      string              `json:"product_id"`
	LiabilityID    string              `json:"liability_id"`
	JobClass       int                 `json:"job_class"`
	CoverageAmount decimal.Decimal     `json:"coverage_amount"`
	BaseRate       decimal.Decimal     `json:"base_rate"`
	RateFactor     decimal.Decimal     `json:"rate_factor"`
	MinPremium     decimal.NullDecimal `json:"min_premium"`
	MaxPremium     decimal.NullDecimal `json:"max_premium"`
	Premium        money.Amount        `json:"premium"`
	AsOf           string              `json:"as_of"`
}

type ListRequest struct {
	ProductID         string
	PlanID            string
	LiabilityID       string
	PremiumType       string
	IncludeSuppressed bool
}

type CreateRequest struct {
	ProductID      string           `json:"product_id"`
	PremiumType    string           `json:"premium_type"`
	PlanID         string           `json:"plan_id"`
	LiabilityID    string           `json:"liability_id"`
	JobClass       *int             `json:"job_class"`
	CoverageAmount *decimal.Decimal `json:"coverage_amount"`
	BaseRate       *decimal.Decimal `json:"base_rate"`
	RateFactor     *decimal.Decimal `json:"rate_factor"`
	MinPremium     *decimal.Decimal `json:"min_premium"`
	MaxPremium     *decimal.Decimal `json:"max_premium"`
	MonthlyPremium *decimal.Decimal `json:"monthly_premium"`
	AnnualPremium  *decimal.Decimal `json:"annual_premium"`
	EffectiveDate  string           `json:"effective_date"`
	ExpiryDate     string           `json:"expiry_date"`
}

type Response struct {
	ID             string              `json:"id"`
	ProductID      string              `json:"product_id"`
	PremiumType    PremiumType         `json:"premium_type"`
	PlanID         *string             `json:"plan_id,omitempty"`
	LiabilityID    *string             `json:"liability_id,omitempty"`
	JobClass       *int                `json:"job_class,omitempty"`
	CoverageAmount decimal.NullDecimal `json:"coverage_amount"`
	BaseRate       decimal.NullDecimal `json:"base_rate"`
	RateFactor     decimal.NullDecimal `json:"rate_factor"`
	MinPremium     decimal.NullDecimal `json:"min_premium"`
	MaxPremium     decimal.NullDecimal `json:"max_premium"`
	MonthlyPremium decimal.NullDecimal `json:"monthly_premium"`
	AnnualPremium  decimal.NullDecimal `json:"annual_premium"`
	EffectiveDate  *string             `json:"effective_date,omitempty"`
	ExpiryDate     *string             `json:"expiry_date,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// DateLayout is the wire format of validity dates and as_of.
const DateLayout = "2006-01-02"

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidProduct        = errors.New("invalid_product")
	ErrInvalidPlan           = errors.New("invalid_plan")
	ErrInvalidLiability      = errors.New("invalid_liability")
	ErrInvalidPremiumType    = errors.New("invalid_premium_type")
	ErrInvalidJobClass       = errors.New("invalid_job_class")
	ErrInvalidCoverageAmount = errors.New("invalid_coverage_amount")
	ErrInvalidBaseRate       = errors.New("invalid_base_rate")
	ErrInvalidRateFactor     = errors.New("invalid_rate_factor")
	ErrInvalidPremiumBounds  = errors.New("invalid_premium_bounds")
	ErrInvalidFixedPremium   = errors.New("invalid_fixed_premium")
	ErrInvalidDate           = errors.New("invalid_date")
	ErrInvalidWindow         = errors.New("invalid_validity_window")
	ErrFieldNotAllowed       = errors.New("field_not_allowed_for_premium_type")
	ErrNotFound              = errors.New("rate_not_found")
)
