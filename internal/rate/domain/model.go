package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PremiumType string

const (
	// PremiumTypeCalculated rows price one liability at one coverage amount.
	PremiumTypeCalculated PremiumType = "calculated"
	// PremiumTypeFixed rows price a whole plan per person.
	PremiumTypeFixed PremiumType = "fixed"
)

func (t PremiumType) Valid() bool {
	return t == PremiumTypeCalculated || t == PremiumTypeFixed
}

// Rate is one priced row. Which columns are set depends on PremiumType.
// A nil EffectiveDate or ExpiryDate leaves that side of the window open.
type Rate struct {
	ID             int64               `json:"id" gorm:"primaryKey"`
	ProductID      int64               `json:"product_id" gorm:"not null;index:ix_rates_lookup,priority:1"`
	PremiumType    PremiumType         `json:"premium_type" gorm:"type:varchar(16);not null;index:ix_rates_lookup,priority:2"`
	PlanID         *int64              `json:"plan_id,omitempty" gorm:"index:ix_rates_plan"`
	LiabilityID    *int64              `json:"liability_id,omitempty" gorm:"index:ix_rates_lookup,priority:3"`
	JobClass       *int                `json:"job_class,omitempty" gorm:"index:ix_rates_lookup,priority:4"`
	CoverageAmount decimal.NullDecimal `json:"coverage_amount" gorm:"type:decimal(16,2)"`
	BaseRate       decimal.NullDecimal `json:"base_rate" gorm:"type:decimal(14,6)"`
	RateFactor     decimal.NullDecimal `json:"rate_factor" gorm:"type:decimal(10,6)"`
	MinPremium     decimal.NullDecimal `json:"min_premium" gorm:"type:decimal(14,4)"`
	MaxPremium     decimal.NullDecimal `json:"max_premium" gorm:"type:decimal(14,4)"`
	MonthlyPremium decimal.NullDecimal `json:"monthly_premium" gorm:"type:decimal(14,4)"`
	AnnualPremium  decimal.NullDecimal `json:"annual_premium" gorm:"type:decimal(14,4)"`
	EffectiveDate  *time.Time          `json:"effective_date,omitempty"`
	ExpiryDate     *time.Time          `json:"expiry_date,omitempty"`
	CreatedAt      time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time           `json:"updated_at" gorm:"not null"`
}

func (Rate) TableName() string { return "rates" }

// Premium returns base_rate × rate_factor clamped to whichever of
// min_premium and max_premium are set. A missing factor counts as 1.
func (r Rate) Premium() decimal.Decimal {
	premium := r.BaseRate.Decimal
	if r.RateFactor.Valid {
		premium = premium.Mul(r.RateFactor.Decimal)
	}
	if r.MinPremium.Valid && premium.LessThan(r.MinPremium.Decimal) {
		premium = r.MinPremium.Decimal
	}
	if r.MaxPremium.Valid && premium.GreaterThan(r.MaxPremium.Decimal) {
		premium = r.MaxPremium.Decimal
	}
	return premium
}

// Covers reports whether the validity window contains asOf.
func (r Rate) Covers(asOf time.Time) bool {
	if r.EffectiveDate != nil && r.EffectiveDate.After(asOf) {
		return false
	}
	if r.ExpiryDate != nil && r.ExpiryDate.Before(asOf) {
		return false
	}
	return true
}
