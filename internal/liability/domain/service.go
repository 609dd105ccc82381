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
}

type CreateRequest struct {
	InsurerID    string  `json:"insurer_id"`
	ClauseID     string  `json:"clause_id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Unit         string  `json:"unit"`
	IsAdditional bool    `json:"is_additional"`
	Description  *string `json:"description"`
}

type ListRequest struct {
	InsurerID string
}

type Response struct {
	ID           string    `json:"id"`
	InsurerID    string    `json:"insurer_id"`
	ClauseID     *string   `json:"clause_id,omitempty"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Unit         Unit      `json:"unit"`
	IsAdditional bool      `json:"is_additional"`
	Description  *string   `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidInsurer = errors.New("invalid_insurer")
	ErrInvalidClause  = errors.New("invalid_clause")
	ErrInvalidCode    = errors.New("invalid_code")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidUnit    = errors.New("invalid_unit")
	ErrCodeExists     = errors.New("liability_code_exists")
	ErrNotFound       = errors.New("liability_not_found")
)
