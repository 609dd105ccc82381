package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/polisa/internal/clock"
	"github.com/smallbiznis/polisa/internal/insurer/domain"
	interceptdomain "github.com/smallbiznis/polisa/internal/intercept/domain"
	"github.com/smallbiznis/polisa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Intercept interceptdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	intercept interceptdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("insurer.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		intercept: p.Intercept,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = slug.Make(name)
	}
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.Insurer{
		ID:        s.genID.Generate().Int64(),
		Code:      code,
		Name:      name,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db, req.Active)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

// UpsertChannelConfig stores the channel config after checking that the
// rule blob parses. The raw blob is stored as sent so absent fields keep
// following the hot-reloaded defaults.
func (s *Service) UpsertChannelConfig(ctx context.Context, req domain.UpsertChannelConfigRequest) (*domain.ChannelConfigResponse, error) {
	insurer, err := s.find(ctx, req.InsurerID)
	if err != nil {
		return nil, err
	}

	channel := strings.TrimSpace(req.ChannelCode)
	if channel == "" {
		return nil, domain.ErrInvalidChannel
	}

	rules := strings.TrimSpace(string(req.InterceptRules))
	if rules == "" || rules == "null" {
		rules = "{}"
	}
	if _, err := s.intercept.ParseRules([]byte(rules)); err != nil {
		if errors.Is(err, interceptdomain.ErrInvalidRules) {
			return nil, domain.ErrInvalidRules
		}
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	cfg := &domain.ChannelConfig{
		ID:                 s.genID.Generate().Int64(),
		InsurerID:          insurer.ID,
		ChannelCode:        channel,
		Active:             active,
		InterceptRulesJSON: rules,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.UpsertChannelConfig(ctx, s.db, cfg); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindChannelConfig(ctx, s.db, insurer.ID, channel)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrChannelNotFound
	}

	s.log.Info("channel config saved",
		zap.Int64("insurer_id", insurer.ID),
		zap.String("channel", channel),
	)
	resp := toChannelResponse(stored)
	return &resp, nil
}

func (s *Service) GetChannelConfig(ctx context.Context, insurerID, channelCode string) (*domain.ChannelConfigResponse, error) {
	insurer, err := s.find(ctx, insurerID)
	if err != nil {
		return nil, err
	}
	channel := strings.TrimSpace(channelCode)
	if channel == "" {
		return nil, domain.ErrInvalidChannel
	}

	item, err := s.repo.FindChannelConfig(ctx, s.db, insurer.ID, channel)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrChannelNotFound
	}
	resp := toChannelResponse(item)
	return &resp, nil
}

func (s *Service) ListChannelConfigs(ctx context.Context, insurerID string) ([]domain.ChannelConfigResponse, error) {
	insurer, err := s.find(ctx, insurerID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListChannelConfigs(ctx, s.db, insurer.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.ChannelConfigResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toChannelResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Insurer, error) {
	insurerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || insurerID == 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, insurerID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toResponse(item *domain.Insurer) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(item.ID).String(),
		Code:      item.Code,
		Name:      item.Name,
		Active:    item.Active,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toChannelResponse(item *domain.ChannelConfig) domain.ChannelConfigResponse {
	rules := json.RawMessage("{}")
	if raw := strings.TrimSpace(item.InterceptRulesJSON); raw != "" && json.Valid([]byte(raw)) {
		rules = json.RawMessage(raw)
	}
	return domain.ChannelConfigResponse{
		ID:             snowflake.ID(item.ID).String(),
		InsurerID:      snowflake.ID(item.InsurerID).String(),
		ChannelCode:    item.ChannelCode,
		Active:         item.Active,
		InterceptRules: rules,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}
