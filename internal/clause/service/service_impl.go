package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/polisa/internal/clause/domain"
	"github.com/smallbiznis/polisa/internal/clock"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	"github.com/smallbiznis/polisa/pkg/db"
	"github.com/smallbiznis/polisa/pkg/db/option"
	"github.com/smallbiznis/polisa/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Store    repository.Repository[domain.Clause]
	Insurers insurerdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	store    repository.Repository[domain.Clause]
	insurers insurerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("clause.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		store:    p.Store,
		insurers: p.Insurers,
	}
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

	now := s.clock.Now().UTC()
	item := &domain.Clause{
		ID:        s.genID.Generate().Int64(),
		InsurerID: insurer.ID,
		Code:      code,
		Name:      name,
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	query := &domain.Clause{}
	if raw := strings.TrimSpace(req.InsurerID); raw != "" {
		insurerID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidInsurer
		}
		query.InsurerID = insurerID.Int64()
	}

	items, err := s.store.Find(ctx, query, option.WithSortBy(option.SortBy{Column: "code"}))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	clauseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || clauseID == 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.store.FindOne(ctx, &domain.Clause{ID: clauseID.Int64()})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(item)
	return &resp, nil
}

func toResponse(c *domain.Clause) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(c.ID).String(),
		InsurerID: snowflake.ID(c.InsurerID).String(),
		Code:      c.Code,
		Name:      c.Name,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
