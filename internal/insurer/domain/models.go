package domain

import "time"

type Insurer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_insurers_code"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Insurer) TableName() string { return "insurers" }

// ChannelConfig is the per-channel API configuration of an insurer. The
// interception rule set lives on it as a JSON text column.
type ChannelConfig struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	InsurerID          int64     `json:"insurer_id" gorm:"not null;uniqueIndex:ux_channel_configs_insurer_channel,priority:1"`
	ChannelCode        string    `json:"channel_code" gorm:"type:varchar(64);not null;uniqueIndex:ux_channel_configs_insurer_channel,priority:2"`
	Active             bool      `json:"active" gorm:"not null;default:true"`
	InterceptRulesJSON string    `json:"intercept_rules_json" gorm:"column:intercept_rules_json;type:text"`
	CreatedAt          time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"not null"`
}

func (ChannelConfig) TableName() string { return "insurer_channel_configs" }
