package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	"github.com/smallbiznis/polisa/internal/audit/repository"
	"github.com/smallbiznis/polisa/internal/clock"
	obscontext "github.com/smallbiznis/polisa/internal/observability/context"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/smallbiznis/polisa/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) auditdomain.Service {
	t.Helper()
	db := dbtest.Open(t, &auditdomain.AuditLog{})
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestRecordAttributesActorAndMasks(t *testing.T) {
	svc := newService(t)
	ctx := obscontext.WithActor(context.Background(), "admin", "token:abc123")
	ctx = obscontext.WithRequestID(ctx, "req-1")

	require.NoError(t, svc.Record(ctx, auditdomain.ActionApplicationStatus, "application", "42", map[string]any{
		"status":        "pending_underwriting",
		"contact_phone": "13800000000",
	}))

	resp, err := svc.List(context.Background(), auditdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	entry := resp.Items[0]
	assert.Equal(t, "admin", entry.ActorType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "token:abc123", *entry.ActorID)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "42", *entry.TargetID)
	assert.Equal(t, "pending_underwriting", entry.Metadata["status"])
	assert.Equal(t, "****0000", entry.Metadata["contact_phone"])
	assert.Equal(t, "req-1", entry.Metadata["request_id"])
}

func TestRecordDefaultsToSystem(t *testing.T) {
	svc := newService(t)

	require.NoError(t, svc.Record(context.Background(), auditdomain.ActionRateDelete, "", "", nil))
	assert.ErrorIs(t, svc.Record(context.Background(), " ", "rate", "1", nil), auditdomain.ErrInvalidAction)

	resp, err := svc.List(context.Background(), auditdomain.ListRequest{ActorType: "system"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "unknown", resp.Items[0].TargetType)
	assert.Nil(t, resp.Items[0].TargetID)
}

func TestListPagesNewestFirst(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for _, action := range []string{auditdomain.ActionProductCreate, auditdomain.ActionPlanCreate, auditdomain.ActionRateCreate} {
		require.NoError(t, svc.Record(ctx, action, "catalog", "", nil))
	}

	first, err := svc.List(ctx, auditdomain.ListRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.True(t, first.PageInfo.HasMore)
	assert.Equal(t, auditdomain.ActionRateCreate, first.Items[0].Action)

	second, err := svc.List(ctx, auditdomain.ListRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, auditdomain.ActionProductCreate, second.Items[0].Action)
	assert.False(t, second.PageInfo.HasMore)

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, auditdomain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
