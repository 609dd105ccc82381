package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	"github.com/smallbiznis/polisa/internal/audit/masking"
	"github.com/smallbiznis/polisa/internal/clock"
	obscontext "github.com/smallbiznis/polisa/internal/observability/context"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	"github.com/smallbiznis/polisa/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	actorType, actorID := resolveActor(ctx)

	payload := map[string]any{}
	for key, value := range masking.MaskJSON(metadata) {
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}
	if channel := obscontext.ChannelFromContext(ctx); channel != "" {
		payload["channel"] = channel
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate().Int64(),
		ActorType:  actorType,
		ActorID:    normalizePointer(actorID),
		Action:     action,
		TargetType: targetType,
		TargetID:   normalizePointer(targetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (*auditdomain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return nil, auditdomain.ErrInvalidTimeRange
	}

	filter := auditdomain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorType:  req.ActorType,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      req.Limit() + 1,
	}
	cursor, err := pagination.DecodeCursor(req.PageToken)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		id, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil || id <= 0 {
			return nil, pagination.ErrInvalidPageToken
		}
		filter.BeforeID = id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	page, info, err := pagination.Page(items, req.Limit(), func(item auditdomain.AuditLog) string {
		return strconv.FormatInt(item.ID, 10)
	})
	if err != nil {
		return nil, err
	}

	resp := &auditdomain.ListResponse{Items: make([]auditdomain.Response, 0, len(page)), PageInfo: info}
	for _, item := range page {
		resp.Items = append(resp.Items, auditdomain.Response{
			ID:         snowflake.ID(item.ID).String(),
			ActorType:  item.ActorType,
			ActorID:    item.ActorID,
			Action:     item.Action,
			TargetType: item.TargetType,
			TargetID:   item.TargetID,
			Metadata:   map[string]any(item.Metadata),
			CreatedAt:  item.CreatedAt,
		})
	}
	return resp, nil
}

func resolveActor(ctx context.Context) (string, string) {
	kind, id := obscontext.ActorFromContext(ctx)
	if kind == "" {
		return string(auditdomain.ActorTypeSystem), id
	}
	return kind, id
}

func normalizePointer(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
