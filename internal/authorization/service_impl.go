package authorization

import (
	"context"
	_ "embed"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/polisa/internal/config"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	tokens   []tokenEntry
}

// NewEnforcer loads policies from the casbin_rule table and makes sure
// the built-in role grants exist.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// NewService binds every configured admin token to its role.
func NewService(p Params) (Service, error) {
	s := &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}

	tokens := make([]string, 0, len(p.Cfg.AdminTokens))
	for token := range p.Cfg.AdminTokens {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		role, err := roleName(p.Cfg.AdminTokens[token])
		if err != nil {
			s.log.Warn("admin token ignored", zap.String("subject", tokenSubject(token)), zap.String("role", p.Cfg.AdminTokens[token]))
			continue
		}
		subject := tokenSubject(token)
		if err := s.ensureGrouping(subject, role); err != nil {
			return nil, err
		}
		s.tokens = append(s.tokens, tokenEntry{token: []byte(token), subject: subject})
	}
	return s, nil
}

func (s *ServiceImpl) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthorized
	}
	subject, ok := matchToken(s.tokens, token)
	if !ok {
		return "", ErrUnauthorized
	}
	return subject, nil
}

func (s *ServiceImpl) Authorize(ctx context.Context, subject, object, action string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ErrUnauthorized
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		obslogger.WithContext(ctx, s.log).Info("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping leaves subject with exactly one role.
func (s *ServiceImpl) ensureGrouping(subject, role string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) >= 2 && rule[1] != role {
			if _, err := s.enforcer.RemoveGroupingPolicy(rule[0], rule[1]); err != nil {
				return err
			}
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, role)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	catalog := []string{ObjectInsurer, ObjectProduct, ObjectClause, ObjectLiability, ObjectPlan, ObjectRate}

	policies := [][]string{
		{RoleAdmin, ObjectApplication, "*"},
		{RoleOperator, ObjectApplication, ActionView},
		{RoleOperator, ObjectApplication, ActionStatus},
		{RoleViewer, ObjectApplication, ActionView},
		{RoleAdmin, ObjectAudit, "*"},
		{RoleOperator, ObjectAudit, ActionView},
	}
	for _, object := range catalog {
		policies = append(policies,
			[]string{RoleAdmin, object, "*"},
			[]string{RoleViewer, object, ActionView},
			[]string{RoleOperator, object, ActionView},
		)
		// insurer and channel configuration stays admin-only
		if object != ObjectInsurer {
			policies = append(policies, []string{RoleOperator, object, ActionManage})
		}
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
