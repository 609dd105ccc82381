package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft               Status = "draft"
	StatusPendingUnderwriting Status = "pending_underwriting"
	StatusUnderReview         Status = "under_review"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
	StatusActive              Status = "active"
	StatusExpired             Status = "expired"
)

var transitions = map[Status][]Status{
	StatusDraft:               {StatusPendingUnderwriting},
	StatusPendingUnderwriting: {StatusUnderReview},
	StatusUnderReview:         {StatusApproved, StatusRejected},
	StatusApproved:            {StatusActive},
	StatusActive:              {StatusExpired},
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingUnderwriting, StatusUnderReview,
		StatusApproved, StatusRejected, StatusActive, StatusExpired:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next directly follows s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Company is upserted by its unified social credit code on every
// submission, so the latest contact details win.
type Company struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	CreditCode   string    `json:"credit_code" gorm:"type:varchar(32);not null;uniqueIndex:ux_companies_credit_code"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Province     string    `json:"province" gorm:"type:varchar(64);not null"`
	City         string    `json:"city" gorm:"type:varchar(64)"`
	Address      string    `json:"address" gorm:"type:varchar(255)"`
	ContactName  string    `json:"contact_name" gorm:"type:varchar(64)"`
	ContactPhone string    `json:"contact_phone" gorm:"type:varchar(32)"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null"`
}

func (Company) TableName() string { return "companies" }

type Application struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	ApplicationNo string          `json:"application_no" gorm:"type:varchar(40);not null;uniqueIndex:ux_applications_no"`
	CompanyID     int64           `json:"company_id" gorm:"not null;index:ix_applications_company"`
	ProductID     int64           `json:"product_id" gorm:"not null;index:ix_applications_product_status,priority:1"`
	InsurerID     int64           `json:"insurer_id" gorm:"not null;index:ix_applications_insurer"`
	Channel       string          `json:"channel" gorm:"type:varchar(64);not null"`
	Status        Status          `json:"status" gorm:"type:varchar(32);not null;index:ix_applications_product_status,priority:2"`
	EffectiveDate *time.Time      `json:"effective_date,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	TotalPremium  decimal.Decimal `json:"total_premium" gorm:"type:decimal(16,2);not null"`
	InsuredCount  int             `json:"insured_count" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

func (Application) TableName() string { return "applications" }

type PlanInstance struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	ApplicationID    int64           `json:"application_id" gorm:"not null;index:ix_application_plans_application"`
	PlanID           int64           `json:"plan_id" gorm:"not null"`
	JobClass         *int            `json:"job_class,omitempty"`
	Duration         string          `json:"duration" gorm:"type:varchar(32)"`
	InsuredCount     int             `json:"insured_count" gorm:"not null"`
	PremiumType      string          `json:"premium_type" gorm:"type:varchar(16);not null"`
	PremiumPerPerson decimal.Decimal `json:"premium_per_person" gorm:"type:decimal(16,2);not null"`
	TotalPremium     decimal.Decimal `json:"total_premium" gorm:"type:decimal(16,2);not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null"`
}

func (PlanInstance) TableName() string { return "application_plans" }

// LiabilitySelection keeps the unrounded line premium; RateID is nil when
// no rate was in force and the line was skipped.
type LiabilitySelection struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	ApplicationID  int64           `json:"application_id" gorm:"not null;index:ix_application_liabilities_application"`
	PlanInstanceID int64           `json:"plan_instance_id" gorm:"not null"`
	LiabilityID    int64           `json:"liability_id" gorm:"not null"`
	CoverageAmount decimal.Decimal `json:"coverage_amount" gorm:"type:decimal(16,2);not null"`
	Premium        decimal.Decimal `json:"premium" gorm:"type:decimal(16,6);not null"`
	RateID         *int64          `json:"rate_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null"`
}

func (LiabilitySelection) TableName() string { return "application_liabilities" }

type InsuredPerson struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	ApplicationID  int64      `json:"application_id" gorm:"not null;index:ix_insured_persons_application"`
	PlanInstanceID int64      `json:"plan_instance_id" gorm:"not null"`
	Name           string     `json:"name" gorm:"type:varchar(64);not null"`
	IDType         string     `json:"id_type" gorm:"type:varchar(16);not null"`
	IDNumber       string     `json:"id_number" gorm:"type:varchar(64);index:ix_insured_persons_id_number"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Gender         string     `json:"gender" gorm:"type:varchar(8)"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null"`
}

func (InsuredPerson) TableName() string { return "insured_persons" }
