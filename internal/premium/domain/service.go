package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polisa/pkg/money"
	"gorm.io/gorm"
)

type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) (*Result, error)
	// CalculateTx runs the same computation on tx, the application
	// submission transaction.
	CalculateTx(ctx context.Context, tx *gorm.DB, req CalculateRequest) (*Result, error)
}

type LiabilitySelection struct {
	LiabilityID    string          `json:"liability_id"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
}

type CalculateRequest struct {
	ProductID           string               `json:"product_id"`
	PlanID              string               `json:"plan_id"`
	LiabilitySelections []LiabilitySelection `json:"liability_selections"`
	JobClass            *int                 `json:"job_class"`
	InsuredCount        int                  `json:"insured_count"`
	Duration            string               `json:"duration"`
	AsOf                string               `json:"as_of"`
}

// Detail is one priced line. Fixed-premium quotes carry a single line with
// Period set; calculated quotes carry one line per rated liability.
type Detail struct {
	RateID         string           `json:"rate_id"`
	LiabilityID    string           `json:"liability_id,omitempty"`
	CoverageAmount *decimal.Decimal `json:"coverage_amount,omitempty"`
	BaseRate       *decimal.Decimal `json:"base_rate,omitempty"`
	RateFactor     *decimal.Decimal `json:"rate_factor,omitempty"`
	Period         string           `json:"period,omitempty"`
	Premium        decimal.Decimal  `json:"premium"`

	LiabilityRef int64 `json:"-"`
}

// Skipped names a selection that had no rate in force.
type Skipped struct {
	LiabilityID    string          `json:"liability_id"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
	Reason         string          `json:"reason"`
}

type Result struct {
	PremiumPerPerson   money.Amount `json:"premium_per_person"`
	TotalPremium       money.Amount `json:"total_premium"`
	InsuredCount       int          `json:"insured_count"`
	PremiumType        string       `json:"premium_type"`
	Duration           string       `json:"duration,omitempty"`
	PremiumDetails     []Detail     `json:"premium_details"`
	SkippedLiabilities []Skipped    `json:"skipped_liabilities"`
}

const (
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"

	SkipReasonRateMissing = "rate_not_found"
)

var (
	ErrProductRequired             = errors.New("product_id_required")
	ErrPlanRequired                = errors.New("plan_id_required")
	ErrInvalidInsuredCount         = errors.New("invalid_insured_count")
	ErrJobClassRequired            = errors.New("job_class_required")
	ErrLiabilitySelectionsRequired = errors.New("liability_selections_required")
	ErrJobClassOutOfRange          = errors.New("job_class_out_of_range")
	ErrInvalidLiability            = errors.New("invalid_liability")
	ErrDuplicateLiability          = errors.New("duplicate_liability_selection")
	ErrInvalidCoverageAmount       = errors.New("invalid_coverage_amount")
	ErrDurationNotAllowed          = errors.New("duration_not_allowed")
	ErrInvalidAsOf                 = errors.New("invalid_as_of")
	ErrProductNotFound             = errors.New("product_not_found")
	ErrProductInactive             = errors.New("product_inactive")
	ErrPlanNotFound                = errors.New("plan_not_found")
	ErrPlanInactive                = errors.New("plan_inactive")
	ErrFixedPremiumMissing         = errors.New("fixed_premium_incomplete")
)
