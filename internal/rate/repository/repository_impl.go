package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/polisa/internal/rate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const rateColumns = `id, product_id, premium_type, plan_id, liability_id, job_class, coverage_amount,
	base_rate, rate_factor, min_premium, max_premium, monthly_premium, annual_premium,
	effective_date, expiry_date, created_at, updated_at`

// windowClause keeps rows whose validity window contains the bound date.
// Either side may be open.
const windowClause = `(effective_date IS NULL OR effective_date <= ?) AND (expiry_date IS NULL OR expiry_date >= ?)`

// newestFirst ranks dated rows above undated ones, then by start date and id.
const newestFirst = `CASE WHEN effective_date IS NULL THEN 1 ELSE 0 END, effective_date DESC, id DESC`

func (r *repo) Create(ctx context.Context, db *gorm.DB, rate *domain.Rate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rates (`+rateColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.ProductID,
		rate.PremiumType,
		rate.PlanID,
		rate.LiabilityID,
		rate.JobClass,
		rate.CoverageAmount,
		rate.BaseRate,
		rate.RateFactor,
		rate.MinPremium,
		rate.MaxPremium,
		rate.MonthlyPremium,
		rate.AnnualPremium,
		rate.EffectiveDate,
		rate.ExpiryDate,
		rate.CreatedAt,
		rate.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Rate, error) {
	var rate domain.Rate
	err := db.WithContext(ctx).Raw(
		`SELECT `+rateColumns+` FROM rates WHERE id = ?`,
		id,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM rates WHERE id = ?`, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindCalculated(ctx context.Context, db *gorm.DB, q domain.Query) (*domain.Rate, error) {
	args := []any{domain.PremiumTypeCalculated, q.ProductID, q.LiabilityID, q.JobClass, q.CoverageAmount}
	// Without a plan every row on the four keys competes on recency alone.
	planClause, order := "", newestFirst
	if q.PlanID != nil {
		planClause = ` AND (plan_id IS NULL OR plan_id = ?)`
		order = `CASE WHEN plan_id IS NULL THEN 1 ELSE 0 END, ` + newestFirst
		args = append(args, *q.PlanID)
	}
	args = append(args, q.AsOf, q.AsOf)

	var rate domain.Rate
	err := db.WithContext(ctx).Raw(
		`SELECT `+rateColumns+`
		 FROM rates
		 WHERE premium_type = ? AND product_id = ? AND liability_id = ? AND job_class = ? AND coverage_amount = ?`+planClause+`
		   AND `+windowClause+`
		 ORDER BY `+order+`
		 LIMIT 1`,
		args...,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) FindFixed(ctx context.Context, db *gorm.DB, productID, planID int64, asOf time.Time) (*domain.Rate, error) {
	var rate domain.Rate
	err := db.WithContext(ctx).Raw(
		`SELECT `+rateColumns+`
		 FROM rates
		 WHERE premium_type = ? AND product_id = ? AND plan_id = ?
		   AND `+windowClause+`
		 ORDER BY `+newestFirst+`
		 LIMIT 1`,
		domain.PremiumTypeFixed,
		productID,
		planID,
		asOf,
		asOf,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

// List hides plan-less calculated rows of products that are priced by
// fixed premiums unless IncludeSuppressed is set.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Rate, error) {
	stmt := db.WithContext(ctx).Table("rates AS r").Select(
		`r.id, r.product_id, r.premium_type, r.plan_id, r.liability_id, r.job_class, r.coverage_amount,
		 r.base_rate, r.rate_factor, r.min_premium, r.max_premium, r.monthly_premium, r.annual_premium,
		 r.effective_date, r.expiry_date, r.created_at, r.updated_at`,
	)
	if filter.ProductID != nil {
		stmt = stmt.Where("r.product_id = ?", *filter.ProductID)
	}
	if filter.PlanID != nil {
		stmt = stmt.Where("r.plan_id = ?", *filter.PlanID)
	}
	if filter.LiabilityID != nil {
		stmt = stmt.Where("r.liability_id = ?", *filter.LiabilityID)
	}
	if filter.PremiumType != "" {
		stmt = stmt.Where("r.premium_type = ?", filter.PremiumType)
	}
	if !filter.IncludeSuppressed {
		stmt = stmt.Where(
			`NOT (r.premium_type = ? AND r.plan_id IS NULL AND EXISTS (
				SELECT 1 FROM rates f WHERE f.product_id = r.product_id AND f.premium_type = ?
			))`,
			domain.PremiumTypeCalculated,
			domain.PremiumTypeFixed,
		)
	}

	var items []domain.Rate
	err := stmt.Order("r.product_id ASC").
		Order("r.premium_type ASC").
		Order("r.liability_id ASC").
		Order("r.job_class ASC").
		Order("r.coverage_amount ASC").
		Order("r.id DESC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
