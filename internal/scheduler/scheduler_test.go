package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	apprepo "github.com/smallbiznis/polisa/internal/application/repository"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	auditrepo "github.com/smallbiznis/polisa/internal/audit/repository"
	auditservice "github.com/smallbiznis/polisa/internal/audit/service"
	"github.com/smallbiznis/polisa/internal/clock"
	"github.com/smallbiznis/polisa/internal/config"
	"github.com/smallbiznis/polisa/internal/ratelimit"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	audit auditdomain.Service
	sched *Scheduler
}

func newFixture(t *testing.T, locker *ratelimit.Locker) *fixture {
	t.Helper()

	db := dbtest.Open(t, &appdomain.Application{}, &auditdomain.AuditLog{})
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fc,
		Repo:  auditrepo.Provide(),
	})

	sched, err := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fc,
		Applications: apprepo.Provide(),
		AuditSvc:     auditSvc,
		Locker:       locker,
		Config:       Config{BatchSize: 10},
	})
	require.NoError(t, err)

	return &fixture{db: db, node: node, clock: fc, audit: auditSvc, sched: sched}
}

func (f *fixture) insertApplication(t *testing.T, no string, status appdomain.Status, expiry *time.Time) int64 {
	t.Helper()
	now := f.clock.Now()
	app := appdomain.Application{
		ID:            f.node.Generate().Int64(),
		ApplicationNo: no,
		CompanyID:     1,
		ProductID:     1,
		InsurerID:     1,
		Channel:       "portal",
		Status:        status,
		ExpiryDate:    expiry,
		TotalPremium:  decimal.RequireFromString("360.00"),
		InsuredCount:  1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(&app).Error)
	return app.ID
}

func (f *fixture) status(t *testing.T, id int64) appdomain.Status {
	t.Helper()
	var app appdomain.Application
	require.NoError(t, f.db.First(&app, "id = ?", id).Error)
	return app.Status
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExpireApplications(t *testing.T) {
	f := newFixture(t, nil)

	lapsed := f.insertApplication(t, "APP-1", appdomain.StatusActive, day(2026, 3, 14))
	lastDay := f.insertApplication(t, "APP-2", appdomain.StatusActive, day(2026, 3, 15))
	draft := f.insertApplication(t, "APP-3", appdomain.StatusDraft, day(2026, 1, 1))
	open := f.insertApplication(t, "APP-4", appdomain.StatusActive, nil)

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, appdomain.StatusExpired, f.status(t, lapsed))
	assert.Equal(t, appdomain.StatusActive, f.status(t, lastDay))
	assert.Equal(t, appdomain.StatusDraft, f.status(t, draft))
	assert.Equal(t, appdomain.StatusActive, f.status(t, open))

	logs, err := f.audit.List(context.Background(), auditdomain.ListRequest{Action: auditdomain.ActionApplicationExpire})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	entry := logs.Items[0]
	assert.Equal(t, "system", entry.ActorType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "scheduler", *entry.ActorID)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, snowflake.ID(lapsed).String(), *entry.TargetID)
	assert.Equal(t, "APP-1", entry.Metadata["application_no"])

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, appdomain.StatusExpired, f.status(t, lastDay))
}

func TestDisabledJobIsSkipped(t *testing.T) {
	f := newFixture(t, nil)
	f.sched.cfg.EnabledJobs = []string{"other_job"}

	id := f.insertApplication(t, "APP-1", appdomain.StatusActive, day(2026, 3, 1))
	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, appdomain.StatusActive, f.status(t, id))
}

func TestLeaseHeldElsewhereSkipsJob(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := ratelimit.NewLocker(client)

	f := newFixture(t, locker)
	id := f.insertApplication(t, "APP-1", appdomain.StatusActive, day(2026, 3, 1))

	ctx := context.Background()
	token, ok, err := locker.TryLock(ctx, leaseKeyPrefix+JobExpireApplications, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.sched.RunOnce(ctx))
	assert.Equal(t, appdomain.StatusActive, f.status(t, id))

	require.NoError(t, locker.Release(ctx, leaseKeyPrefix+JobExpireApplications, token))
	require.NoError(t, f.sched.RunOnce(ctx))
	assert.Equal(t, appdomain.StatusExpired, f.status(t, id))
	assert.False(t, mr.Exists(leaseKeyPrefix+JobExpireApplications))
}

func TestSchedulerDisabledByDefault(t *testing.T) {
	assert.False(t, DefaultConfig().Enabled)
	assert.False(t, ProvideConfig(config.Config{}).Enabled)
}
