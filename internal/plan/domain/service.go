package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	ListByProduct(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)

	// BindLiability attaches or reconfigures a liability on a plan.
	BindLiability(ctx context.Context, req BindLiabilityRequest) (*LiabilityResponse, error)
	// ListLiabilities returns the plan's liabilities by display order.
	ListLiabilities(ctx context.Context, planID string) ([]LiabilityResponse, error)
}

type CreateRequest struct {
	ProductID   string   `json:"product_id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	JobClassMin *int     `json:"job_class_min"`
	JobClassMax *int     `json:"job_class_max"`
	Durations   []string `json:"durations"`
	PaymentType string   `json:"payment_type"`
	Active      *bool    `json:"active"`
}

type ListRequest struct {
	ProductID string
	Active    *bool
}

type Response struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	JobClassMin int       `json:"job_class_min"`
	JobClassMax int       `json:"job_class_max"`
	Durations   []string  `json:"durations"`
	PaymentType string    `json:"payment_type"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BindLiabilityRequest struct {
	PlanID          string   `json:"-"`
	LiabilityID     string   `json:"liability_id"`
	Required        bool     `json:"required"`
	CoverageOptions []string `json:"coverage_options"`
	DefaultCoverage *string  `json:"default_coverage"`
	DisplayOrder    int      `json:"display_order"`
}

type LiabilityResponse struct {
	ID              string    `json:"id"`
	PlanID          string    `json:"plan_id"`
	LiabilityID     string    `json:"liability_id"`
	LiabilityCode   string    `json:"liability_code"`
	LiabilityName   string    `json:"liability_name"`
	Unit            string    `json:"unit"`
	IsAdditional    bool      `json:"is_additional"`
	Required        bool      `json:"required"`
	CoverageOptions []string  `json:"coverage_options"`
	DefaultCoverage *string   `json:"default_coverage,omitempty"`
	DisplayOrder    int       `json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	PaymentTypeAnnual  = "annual"
	PaymentTypeMonthly = "monthly"
	PaymentTypeSingle  = "single"
)

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidProduct         = errors.New("invalid_product")
	ErrInvalidCode            = errors.New("invalid_code")
	ErrInvalidName            = errors.New("invalid_name")
	ErrInvalidJobClassRange   = errors.New("invalid_job_class_range")
	ErrInvalidDurations       = errors.New("invalid_durations")
	ErrInvalidPaymentType     = errors.New("invalid_payment_type")
	ErrInvalidLiability       = errors.New("invalid_liability")
	ErrInvalidCoverageOptions = errors.New("invalid_coverage_options")
	ErrInvalidDefaultCoverage = errors.New("invalid_default_coverage")
	ErrCodeExists             = errors.New("plan_code_exists")
	ErrNotFound               = errors.New("plan_not_found")
)
