package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	InsurerID   int64             `json:"insurer_id" gorm:"not null;index:ix_products_insurer"`
	Code        string            `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_products_code"`
	Name        string            `json:"name" gorm:"type:varchar(255);not null"`
	Type        string            `json:"type" gorm:"type:varchar(64);not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
