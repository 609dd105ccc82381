package repository

import (
	"context"

	"github.com/smallbiznis/polisa/internal/plan/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const planColumns = `id, product_id, code, name, job_class_min, job_class_max, durations, payment_type, active, created_at, updated_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (`+planColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.ProductID,
		plan.Code,
		plan.Name,
		plan.JobClassMin,
		plan.JobClassMax,
		plan.Durations,
		plan.PaymentType,
		plan.Active,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT `+planColumns+` FROM plans WHERE id = ?`,
		id,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID int64, active *bool) ([]domain.Plan, error) {
	var items []domain.Plan
	stmt := db.WithContext(ctx).Model(&domain.Plan{}).Where("product_id = ?", productID)
	if active != nil {
		stmt = stmt.Where("active = ?", *active)
	}
	if err := stmt.Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertLiability relies on the (plan_id, liability_id) unique index.
func (r *repo) UpsertLiability(ctx context.Context, db *gorm.DB, item *domain.PlanLiability) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "plan_id"}, {Name: "liability_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"required", "coverage_options", "default_coverage", "display_order", "updated_at",
		}),
	}).Create(item).Error
}

func (r *repo) ListLiabilities(ctx context.Context, db *gorm.DB, planID int64) ([]domain.PlanLiability, error) {
	var items []domain.PlanLiability
	err := db.WithContext(ctx).Raw(
		`SELECT id, plan_id, liability_id, required, coverage_options, default_coverage, display_order, created_at, updated_at
		 FROM plan_liabilities
		 WHERE plan_id = ?
		 ORDER BY display_order ASC, id ASC`,
		planID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
