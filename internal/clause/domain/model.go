package domain

import "time"

// Clause is the policy wording a liability can point at.
type Clause struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	InsurerID int64     `json:"insurer_id" gorm:"not null;uniqueIndex:ux_clauses_insurer_code,priority:1"`
	Code      string    `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_clauses_insurer_code,priority:2"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Clause) TableName() string { return "clauses" }
