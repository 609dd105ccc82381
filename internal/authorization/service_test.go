package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/polisa/internal/config"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, tokens map[string]string) Service {
	t.Helper()
	db := dbtest.Open(t)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	svc, err := NewService(Params{
		Cfg:      config.Config{AdminTokens: tokens},
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
	require.NoError(t, err)
	return svc
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t, map[string]string{"secret-admin": "admin", "bogus": "root"})
	ctx := context.Background()

	subject, err := svc.Authenticate(ctx, "secret-admin")
	require.NoError(t, err)
	assert.Equal(t, tokenSubject("secret-admin"), subject)
	assert.NotContains(t, subject, "secret")

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	// unknown roles never authenticate
	_, err = svc.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeRoles(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"a": "admin",
		"o": "role:operator",
		"v": "Viewer",
	})
	ctx := context.Background()
	admin, _ := svc.Authenticate(ctx, "a")
	operator, _ := svc.Authenticate(ctx, "o")
	viewer, _ := svc.Authenticate(ctx, "v")

	cases := []struct {
		name    string
		subject string
		object  string
		action  string
		wantErr error
	}{
		{"admin manages insurers", admin, ObjectInsurer, ActionManage, nil},
		{"admin changes status", admin, ObjectApplication, ActionStatus, nil},
		{"operator manages rates", operator, ObjectRate, ActionManage, nil},
		{"operator cannot manage insurers", operator, ObjectInsurer, ActionManage, ErrForbidden},
		{"operator changes status", operator, ObjectApplication, ActionStatus, nil},
		{"viewer views plans", viewer, ObjectPlan, ActionView, nil},
		{"viewer cannot manage plans", viewer, ObjectPlan, ActionManage, ErrForbidden},
		{"viewer cannot change status", viewer, ObjectApplication, ActionStatus, ErrForbidden},
		{"anonymous", "", ObjectPlan, ActionView, ErrUnauthorized},
		{"unknown subject", "token:ffff", ObjectPlan, ActionView, ErrForbidden},
		{"missing object", admin, "", ActionView, ErrInvalidObject},
		{"missing action", admin, ObjectPlan, "", ErrInvalidAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.subject, tc.object, tc.action)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	_, err = NewService(Params{Cfg: config.Config{AdminTokens: map[string]string{"t": "admin"}}, Log: zap.NewNop(), Enforcer: enforcer})
	require.NoError(t, err)

	// a restart with a downgraded token reloads policies from the table
	enforcer, err = NewEnforcer(db)
	require.NoError(t, err)
	svc, err := NewService(Params{Cfg: config.Config{AdminTokens: map[string]string{"t": "viewer"}}, Log: zap.NewNop(), Enforcer: enforcer})
	require.NoError(t, err)

	subject, err := svc.Authenticate(ctx, "t")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Authorize(ctx, subject, ObjectInsurer, ActionManage), ErrForbidden)
	assert.NoError(t, svc.Authorize(ctx, subject, ObjectInsurer, ActionView))

	roles, err := enforcer.GetRolesForUser(subject)
	require.NoError(t, err)
	assert.Equal(t, []string{RoleViewer}, roles)
}

func TestSeedPoliciesIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	_, err := NewEnforcer(db)
	require.NoError(t, err)
	var first int64
	require.NoError(t, db.Table("casbin_rule").Count(&first).Error)

	_, err = NewEnforcer(db)
	require.NoError(t, err)
	var second int64
	require.NoError(t, db.Table("casbin_rule").Count(&second).Error)
	assert.Equal(t, first, second)
	assert.Positive(t, first)
}
