package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Query is the key of a calculated rate lookup. PlanID, when set, admits
// plan-specific rows of that plan ahead of plan-less ones.
type Query struct {
	ProductID      int64
	PlanID         *int64
	LiabilityID    int64
	JobClass       int
	CoverageAmount decimal.Decimal
	AsOf           time.Time
}

type ListFilter struct {
	ProductID         *int64
	PlanID            *int64
	LiabilityID       *int64
	PremiumType       PremiumType
	IncludeSuppressed bool
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, rate *Rate) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Rate, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	// FindCalculated returns the newest calculated row covering q.AsOf.
	FindCalculated(ctx context.Context, db *gorm.DB, q Query) (*Rate, error)
	// FindFixed returns the newest fixed row of (productID, planID) covering asOf.
	FindFixed(ctx context.Context, db *gorm.DB, productID, planID int64, asOf time.Time) (*Rate, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Rate, error)
}
