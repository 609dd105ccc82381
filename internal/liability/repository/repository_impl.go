package repository

import (
	"context"

	"github.com/smallbiznis/polisa/internal/liability/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const liabilityColumns = `id, insurer_id, clause_id, code, name, type, unit, is_additional, description, created_at, updated_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, item *domain.Liability) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO liabilities (`+liabilityColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.InsurerID,
		item.ClauseID,
		item.Code,
		item.Name,
		item.Type,
		item.Unit,
		item.IsAdditional,
		item.Description,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Liability, error) {
	var item domain.Liability
	err := db.WithContext(ctx).Raw(
		`SELECT `+liabilityColumns+` FROM liabilities WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Liability, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Liability
	err := db.WithContext(ctx).Raw(
		`SELECT `+liabilityColumns+` FROM liabilities WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, insurerID *int64) ([]domain.Liability, error) {
	var items []domain.Liability
	stmt := db.WithContext(ctx).Model(&domain.Liability{})
	if insurerID != nil {
		stmt = stmt.Where("insurer_id = ?", *insurerID)
	}
	if err := stmt.Order("is_additional ASC").Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
