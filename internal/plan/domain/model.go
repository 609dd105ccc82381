package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Plan is a variant of a product. Durations holds the duration strings a
// plan instance may choose from, e.g. "1年" or "6个月".
type Plan struct {
	ID          int64                       `json:"id" gorm:"primaryKey"`
	ProductID   int64                       `json:"product_id" gorm:"not null;uniqueIndex:ux_plans_product_code,priority:1"`
	Code        string                      `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_plans_product_code,priority:2"`
	Name        string                      `json:"name" gorm:"type:varchar(255);not null"`
	JobClassMin int                         `json:"job_class_min" gorm:"not null;default:1"`
	JobClassMax int                         `json:"job_class_max" gorm:"not null;default:6"`
	Durations   datatypes.JSONSlice[string] `json:"durations" gorm:"type:json"`
	PaymentType string                      `json:"payment_type" gorm:"type:varchar(32);not null"`
	Active      bool                        `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time                   `json:"updated_at" gorm:"not null"`
}

func (Plan) TableName() string { return "plans" }

// AllowsJobClass reports whether jobClass lies in the plan's range.
func (p Plan) AllowsJobClass(jobClass int) bool {
	return jobClass >= p.JobClassMin && jobClass <= p.JobClassMax
}

// AllowsDuration reports whether duration is one of the configured strings.
// A plan without configured durations accepts any.
func (p Plan) AllowsDuration(duration string) bool {
	if len(p.Durations) == 0 {
		return true
	}
	for _, d := range p.Durations {
		if d == duration {
			return true
		}
	}
	return false
}

// PlanLiability binds a liability to a plan with its selectable coverages.
type PlanLiability struct {
	ID              int64                       `json:"id" gorm:"primaryKey"`
	PlanID          int64                       `json:"plan_id" gorm:"not null;uniqueIndex:ux_plan_liabilities_plan_liability,priority:1"`
	LiabilityID     int64                       `json:"liability_id" gorm:"not null;uniqueIndex:ux_plan_liabilities_plan_liability,priority:2"`
	Required        bool                        `json:"required" gorm:"not null;default:false"`
	CoverageOptions datatypes.JSONSlice[string] `json:"coverage_options" gorm:"type:json"`
	DefaultCoverage *string                     `json:"default_coverage,omitempty" gorm:"type:varchar(64)"`
	DisplayOrder    int                         `json:"display_order" gorm:"not null;default:0"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"not null"`
}

func (PlanLiability) TableName() string { return "plan_liabilities" }
