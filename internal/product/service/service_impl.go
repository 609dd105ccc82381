package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/polisa/internal/clock"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	"github.com/smallbiznis/polisa/internal/product/domain"
	"github.com/smallbiznis/polisa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Insurers insurerdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	insurers insurerdomain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		repo:     p.Repo,
		insurers: p.Insurers,
		genID:    p.GenID,
		clock:    p.Clock,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Type:    strings.TrimSpace(req.Type),
		Name:    strings.TrimSpace(req.Name),
		Active:  req.Active,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}
	if raw := strings.TrimSpace(req.InsurerID); raw != "" {
		insurerID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidInsurer
		}
		value := insurerID.Int64()
		filter.InsurerID = &value
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	insurerID, err := snowflake.ParseString(strings.TrimSpace(req.InsurerID))
	if err != nil || insurerID == 0 {
		return nil, domain.ErrInvalidInsurer
	}
	insurer, err := s.insurers.FindByID(ctx, s.db, insurerID.Int64())
	if err != nil {
		return nil, err
	}
	if insurer == nil {
		return nil, domain.ErrInvalidInsurer
	}

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

	productType := strings.TrimSpace(req.Type)
	if productType == "" {
		return nil, domain.ErrInvalidType
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	p := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		InsurerID:   insurer.ID,
		Code:        code,
		Name:        name,
		Type:        productType,
		Description: trimmedPtr(req.Description),
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}

	s.log.Info("product created", zap.Int64("product_id", p.ID), zap.String("code", p.Code))
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Type != nil {
		productType := strings.TrimSpace(*req.Type)
		if productType == "" {
			return nil, domain.ErrInvalidType
		}
		item.Type = productType
	}
	if req.Description != nil {
		item.Description = trimmedPtr(req.Description)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

// Archive soft-disables a product. Plans, rates and applications keep
// referencing it, so products are never deleted.
func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Active = false
	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		InsurerID:   snowflake.ID(p.InsurerID).String(),
		Code:        p.Code,
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	return resp
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
