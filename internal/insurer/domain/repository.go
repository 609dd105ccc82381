package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, insurer *Insurer) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Insurer, error)
	FindAll(ctx context.Context, db *gorm.DB, active *bool) ([]Insurer, error)

	UpsertChannelConfig(ctx context.Context, db *gorm.DB, cfg *ChannelConfig) error
	FindChannelConfig(ctx context.Context, db *gorm.DB, insurerID int64, channelCode string) (*ChannelConfig, error)
	ListChannelConfigs(ctx context.Context, db *gorm.DB, insurerID int64) ([]ChannelConfig, error)
}
