package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, item *Liability) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Liability, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Liability, error)
	List(ctx context.Context, db *gorm.DB, insurerID *int64) ([]Liability, error)
}
