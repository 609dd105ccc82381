package domain

import "time"

type Unit string

const (
	UnitAmount Unit = "amount"
	UnitDays   Unit = "days"
	UnitRatio  Unit = "ratio"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitAmount, UnitDays, UnitRatio:
		return true
	default:
		return false
	}
}

// Liability is a coverage line owned by an insurer and shared across plans.
// Additional liabilities are riders sold on top of a main liability.
type Liability struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	InsurerID    int64     `json:"insurer_id" gorm:"not null;uniqueIndex:ux_liabilities_insurer_code,priority:1"`
	ClauseID     *int64    `json:"clause_id,omitempty" gorm:"index:ix_liabilities_clause"`
	Code         string    `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_liabilities_insurer_code,priority:2"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Type         string    `json:"type" gorm:"type:varchar(64);not null"`
	Unit         Unit      `json:"unit" gorm:"type:varchar(16);not null"`
	IsAdditional bool      `json:"is_additional" gorm:"not null;default:false"`
	Description  *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null"`
}

func (Liability) TableName() string { return "liabilities" }
