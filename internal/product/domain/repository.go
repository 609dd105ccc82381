package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
}

type ListFilter struct {
	InsurerID *int64
	Type      string
	Name      string
	Active    *bool
	SortBy    string
	OrderBy   string
}
