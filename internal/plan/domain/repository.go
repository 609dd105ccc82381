package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Plan, error)
	ListByProduct(ctx context.Context, db *gorm.DB, productID int64, active *bool) ([]Plan, error)

	UpsertLiability(ctx context.Context, db *gorm.DB, item *PlanLiability) error
	ListLiabilities(ctx context.Context, db *gorm.DB, planID int64) ([]PlanLiability, error)
}
