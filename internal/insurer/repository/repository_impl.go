package repository

import (
	"context"

	"github.com/smallbiznis/polisa/internal/insurer/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, insurer *domain.Insurer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO insurers (id, code, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		insurer.ID,
		insurer.Code,
		insurer.Name,
		insurer.Active,
		insurer.CreatedAt,
		insurer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Insurer, error) {
	var item domain.Insurer
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, active, created_at, updated_at
		 FROM insurers WHERE id = ?`,
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

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, active *bool) ([]domain.Insurer, error) {
	var items []domain.Insurer
	stmt := db.WithContext(ctx).Model(&domain.Insurer{})
	if active != nil {
		stmt = stmt.Where("active = ?", *active)
	}
	if err := stmt.Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertChannelConfig relies on the (insurer_id, channel_code) unique index.
func (r *repo) UpsertChannelConfig(ctx context.Context, db *gorm.DB, cfg *domain.ChannelConfig) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "insurer_id"}, {Name: "channel_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"active", "intercept_rules_json", "updated_at"}),
	}).Create(cfg).Error
}

func (r *repo) FindChannelConfig(ctx context.Context, db *gorm.DB, insurerID int64, channelCode string) (*domain.ChannelConfig, error) {
	var item domain.ChannelConfig
	err := db.WithContext(ctx).Raw(
		`SELECT id, insurer_id, channel_code, active, intercept_rules_json, created_at, updated_at
		 FROM insurer_channel_configs WHERE insurer_id = ? AND channel_code = ?`,
		insurerID,
		channelCode,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListChannelConfigs(ctx context.Context, db *gorm.DB, insurerID int64) ([]domain.ChannelConfig, error) {
	var items []domain.ChannelConfig
	err := db.WithContext(ctx).Raw(
		`SELECT id, insurer_id, channel_code, active, intercept_rules_json, created_at, updated_at
		 FROM insurer_channel_configs WHERE insurer_id = ? ORDER BY channel_code ASC`,
		insurerID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
