package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// UpsertCompany inserts or refreshes the company keyed by credit code
	// and sets company.ID to the stored row.
	UpsertCompany(ctx context.Context, db *gorm.DB, company *Company) error
	FindCompany(ctx context.Context, db *gorm.DB, id int64) (*Company, error)

	Create(ctx context.Context, db *gorm.DB, app *Application) error
	CreatePlanInstances(ctx context.Context, db *gorm.DB, items []PlanInstance) error
	CreateLiabilitySelections(ctx context.Context, db *gorm.DB, items []LiabilitySelection) error
	CreateInsuredPersons(ctx context.Context, db *gorm.DB, items []InsuredPerson) error

	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Application, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Application, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, from, to Status, at time.Time) (bool, error)
	// ListExpiring returns applications in status whose expiry date falls
	// before the given day, oldest expiry first.
	ListExpiring(ctx context.Context, db *gorm.DB, status Status, before time.Time, limit int) ([]Application, error)

	ListPlanInstances(ctx context.Context, db *gorm.DB, applicationID int64) ([]PlanInstance, error)
	ListLiabilitySelections(ctx context.Context, db *gorm.DB, applicationID int64) ([]LiabilitySelection, error)
	ListInsuredPersons(ctx context.Context, db *gorm.DB, applicationID int64) ([]InsuredPerson, error)
}

// ListFilter selects applications newest first. BeforeID is the keyset
// cursor; Limit is the row count to fetch.
type ListFilter struct {
	Status    Status
	ProductID int64
	CompanyID int64
	BeforeID  int64
	Limit     int
}
