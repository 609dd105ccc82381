package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/polisa/internal/application/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertCompany(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "credit_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "province", "city", "address",
			"contact_name", "contact_phone", "contact_email", "updated_at",
		}),
	}).Create(company).Error
	if err != nil {
		return err
	}

	var id int64
	if err := db.WithContext(ctx).Raw(
		`SELECT id FROM companies WHERE credit_code = ?`,
		company.CreditCode,
	).Scan(&id).Error; err != nil {
		return err
	}
	company.ID = id
	return nil
}

func (r *repo) FindCompany(ctx context.Context, db *gorm.DB, id int64) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT id, credit_code, name, province, city, address, contact_name, contact_phone, contact_email, created_at, updated_at
		 FROM companies WHERE id = ?`,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Create(app).Error
}

func (r *repo) CreatePlanInstances(ctx context.Context, db *gorm.DB, items []domain.PlanInstance) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) CreateLiabilitySelections(ctx context.Context, db *gorm.DB, items []domain.LiabilitySelection) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) CreateInsuredPersons(ctx context.Context, db *gorm.DB, items []domain.InsuredPerson) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(&items, 200).Error
}

const applicationColumns = `id, application_no, company_id, product_id, insurer_id, channel, status,
	effective_date, expiry_date, total_premium, insured_count, created_at, updated_at`

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Application, error) {
	var app domain.Application
	err := db.WithContext(ctx).Raw(
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`,
		id,
	).Scan(&app).Error
	if err != nil {
		return nil, err
	}
	if app.ID == 0 {
		return nil, nil
	}
	return &app, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Application, error) {
	stmt := db.WithContext(ctx).Model(&domain.Application{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ProductID != 0 {
		stmt = stmt.Where("product_id = ?", filter.ProductID)
	}
	if filter.CompanyID != 0 {
		stmt = stmt.Where("company_id = ?", filter.CompanyID)
	}
	if filter.BeforeID != 0 {
		stmt = stmt.Where("id < ?", filter.BeforeID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var items []domain.Application
	if err := stmt.Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus moves id from one status to another and reports false when
// the row was no longer in the expected status.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, from, to domain.Status, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE applications SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, at, id, from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ListExpiring(ctx context.Context, db *gorm.DB, status domain.Status, before time.Time, limit int) ([]domain.Application, error) {
	stmt := db.WithContext(ctx).Model(&domain.Application{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", status, before).
		Order("expiry_date ASC, id ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var items []domain.Application
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListPlanInstances(ctx context.Context, db *gorm.DB, applicationID int64) ([]domain.PlanInstance, error) {
	var items []domain.PlanInstance
	err := db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) ListLiabilitySelections(ctx context.Context, db *gorm.DB, applicationID int64) ([]domain.LiabilitySelection, error) {
	var items []domain.LiabilitySelection
	err := db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("plan_instance_id ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) ListInsuredPersons(ctx context.Context, db *gorm.DB, applicationID int64) ([]domain.InsuredPerson, error) {
	var items []domain.InsuredPerson
	err := db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}
