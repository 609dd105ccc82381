package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	"github.com/smallbiznis/polisa/internal/clock"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	"github.com/smallbiznis/polisa/internal/liability/domain"
	"github.com/smallbiznis/polisa/pkg/db"
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
	Repo     domain.Repository
	Insurers insurerdomain.Repository
	Clauses  repository.Repository[clausedomain.Clause]
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	insurers insurerdomain.Repository
	clauses  repository.Repository[clausedomain.Clause]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("liability.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		insurers: p.Insurers,
		clauses:  p.Clauses,
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
	liabilityType := strings.TrimSpace(req.Type)
	if liabilityType == "" {
		return nil, domain.ErrInvalidType
	}
	unit := domain.Unit(strings.ToLower(strings.TrimSpace(req.Unit)))
	if unit == "" {
		unit = domain.UnitAmount
	}
	if !unit.Valid() {
		return nil, domain.ErrInvalidUnit
	}

	var clauseID *int64
	if raw := strings.TrimSpace(req.ClauseID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidClause
		}
		clause, err := s.clauses.FindOne(ctx, &clausedomain.Clause{ID: id.Int64()})
		if err != nil {
			return nil, err
		}
		// a clause must exist and belong to the same insurer
		if clause == nil || clause.InsurerID != insurer.ID {
			return nil, domain.ErrInvalidClause
		}
		value := clause.ID
		clauseID = &value
	}

	now := s.clock.Now().UTC()
	item := &domain.Liability{
		ID:           s.genID.Generate().Int64(),
		InsurerID:    insurer.ID,
		ClauseID:     clauseID,
		Code:         code,
		Name:         name,
		Type:         liabilityType,
		Unit:         unit,
		IsAdditional: req.IsAdditional,
		Description:  trimmedPtr(req.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
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
	var insurerID *int64
	if raw := strings.TrimSpace(req.InsurerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidInsurer
		}
		value := id.Int64()
		insurerID = &value
	}

	items, err := s.repo.List(ctx, s.db, insurerID)
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
	liabilityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || liabilityID == 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, liabilityID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(item)
	return &resp, nil
}

func toResponse(l *domain.Liability) domain.Response {
	resp := domain.Response{
		ID:           snowflake.ID(l.ID).String(),
		InsurerID:    snowflake.ID(l.InsurerID).String(),
		Code:         l.Code,
		Name:         l.Name,
		Type:         l.Type,
		Unit:         l.Unit,
		IsAdditional: l.IsAdditional,
		Description:  l.Description,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.ClauseID != nil {
		id := snowflake.ID(*l.ClauseID).String()
		resp.ClauseID = &id
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
