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
	InsurerID string `json:"insurer_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Content   string `json:"content"`
}

type ListRequest struct {
	InsurerID string
}

type Response struct {
	ID        string    `json:"id"`
	InsurerID string    `json:"insurer_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidInsurer = errors.New("invalid_insurer")
	ErrInvalidCode    = errors.New("invalid_code")
	ErrInvalidName    = errors.New("invalid_name")
	ErrCodeExists     = errors.New("clause_code_exists")
	ErrNotFound       = errors.New("clause_not_found")
)
