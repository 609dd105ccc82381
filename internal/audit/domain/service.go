package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/polisa/pkg/db/pagination"
	"gorm.io/gorm"
)

const (
	ActionInsurerCreate     = "insurer.create"
	ActionChannelUpsert     = "insurer.channel.upsert"
	ActionProductCreate     = "product.create"
	ActionProductUpdate     = "product.update"
	ActionProductArchive    = "product.archive"
	ActionClauseCreate      = "clause.create"
	ActionLiabilityCreate   = "liability.create"
	ActionPlanCreate        = "plan.create"
	ActionPlanLiabilityBind = "plan.liability.bind"
	ActionRateCreate        = "rate.create"
	ActionRateDelete        = "rate.delete"
	ActionApplicationStatus = "application.status"
	ActionApplicationExpire = "application.expire"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditLog, error)
}

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	BeforeID   int64
	Limit      int
}

type ListRequest struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	pagination.Pagination
}

type Response struct {
	ID         string         `json:"id"`
	ActorType  string         `json:"actor_type"`
	ActorID    *string        `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   *string        `json:"target_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type ListResponse struct {
	Items    []Response          `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// Record writes an entry attributed to the actor carried by ctx. A
	// context without an actor is attributed to the system.
	Record(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
