package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	InsurerID string
	Type      string
	Name      string
	Active    *bool
	SortBy    string
	OrderBy   string
}

type CreateRequest struct {
	InsurerID   string         `json:"insurer_id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description *string        `json:"description"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string         `json:"-"`
	Name        *string        `json:"name"`
	Type        *string        `json:"type"`
	Description *string        `json:"description"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type Response struct {
	ID          string         `json:"id"`
	InsurerID   string         `json:"insurer_id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description *string        `json:"description,omitempty"`
	Active      bool           `json:"active"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidInsurer = errors.New("invalid_insurer")
	ErrInvalidCode    = errors.New("invalid_code")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidID      = errors.New("invalid_id")
	ErrCodeExists     = errors.New("product_code_exists")
	ErrNotFound       = errors.New("product_not_found")
	ErrInactive       = errors.New("product_inactive")
)
