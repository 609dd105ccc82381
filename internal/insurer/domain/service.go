package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)

	UpsertChannelConfig(ctx context.Context, req UpsertChannelConfigRequest) (*ChannelConfigResponse, error)
	GetChannelConfig(ctx context.Context, insurerID, channelCode string) (*ChannelConfigResponse, error)
	ListChannelConfigs(ctx context.Context, insurerID string) ([]ChannelConfigResponse, error)
}

type CreateRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

type ListRequest struct {
	Active *bool
}

type Response struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpsertChannelConfigRequest struct {
	InsurerID      string          `json:"insurer_id"`
	ChannelCode    string          `json:"channel_code"`
	Active         *bool           `json:"active"`
	InterceptRules json.RawMessage `json:"intercept_rules"`
}

type ChannelConfigResponse struct {
	ID             string          `json:"id"`
	InsurerID      string          `json:"insurer_id"`
	ChannelCode    string          `json:"channel_code"`
	Active         bool            `json:"active"`
	InterceptRules json.RawMessage `json:"intercept_rules"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidChannel  = errors.New("invalid_channel")
	ErrInvalidRules    = errors.New("invalid_intercept_rules")
	ErrCodeExists      = errors.New("insurer_code_exists")
	ErrNotFound        = errors.New("insurer_not_found")
	ErrChannelNotFound = errors.New("channel_config_not_found")
)
