package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polisa/internal/clock"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	insurerrepo "github.com/smallbiznis/polisa/internal/insurer/repository"
	"github.com/smallbiznis/polisa/internal/product/domain"
	"github.com/smallbiznis/polisa/internal/product/repository"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	clock     *clock.FakeClock
	svc       domain.Service
	insurerID string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &insurerdomain.Insurer{}, &domain.Product{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	insurer := insurerdomain.Insurer{ID: node.Generate().Int64(), Code: "pingan", Name: "Ping An", Active: true, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, db.Create(&insurer).Error)

	fc := clock.NewFakeClock(fixedNow)
	return &fixture{
		db:    db,
		clock: fc,
		svc: New(Params{
			DB:       db,
			Log:      zap.NewNop(),
			GenID:    node,
			Clock:    fc,
			Repo:     repository.Provide(),
			Insurers: insurerrepo.Provide(),
		}),
		insurerID: snowflake.ID(insurer.ID).String(),
	}
}

func (f *fixture) create(t *testing.T, code string) *domain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		InsurerID: f.insurerID,
		Code:      code,
		Name:      "Group Accident",
		Type:      "accident",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateProduct(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	desc := "  Accident cover for small teams  "
	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		InsurerID:   f.insurerID,
		Name:        "Group Accident",
		Type:        "accident",
		Description: &desc,
		Metadata:    map[string]any{"tier": "sme"},
	})
	require.NoError(t, err)
	assert.Equal(t, "group-accident", resp.Code)
	assert.True(t, resp.Active)
	require.NotNil(t, resp.Description)
	assert.Equal(t, "Accident cover for small teams", *resp.Description)
	assert.True(t, resp.CreatedAt.Equal(fixedNow))

	got, err := f.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "sme", got.Metadata["tier"])

	_, err = f.svc.Create(ctx, domain.CreateRequest{InsurerID: f.insurerID, Code: "group-accident", Name: "Dup", Type: "accident"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestCreateProductValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{InsurerID: "12345", Name: "X", Type: "accident"})
	assert.ErrorIs(t, err, domain.ErrInvalidInsurer)

	_, err = f.svc.Create(ctx, domain.CreateRequest{InsurerID: f.insurerID, Name: " ", Type: "accident"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CreateRequest{InsurerID: f.insurerID, Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestUpdateProduct(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	created := f.create(t, "group-accident")

	f.clock.Advance(2 * time.Hour)
	name := "Group Accident Plus"
	blank := " "
	resp, err := f.svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Name: &name, Description: &blank})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.Equal(t, "accident", resp.Type)
	assert.Nil(t, resp.Description)
	assert.True(t, resp.UpdatedAt.Equal(fixedNow.Add(2*time.Hour)))

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.True(t, got.CreatedAt.Equal(fixedNow))
	assert.True(t, got.UpdatedAt.Equal(fixedNow.Add(2*time.Hour)))

	empty := ""
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Type: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: "12345", Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArchiveProductKeepsRow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	archived := f.create(t, "group-accident")
	live := f.create(t, "employer-liability")

	f.clock.Advance(time.Hour)
	resp, err := f.svc.Archive(ctx, archived.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.True(t, resp.UpdatedAt.Equal(fixedNow.Add(time.Hour)))

	got, err := f.svc.Get(ctx, archived.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "group-accident", got.Code)

	active := true
	items, err := f.svc.List(ctx, domain.ListRequest{Active: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, live.ID, items[0].ID)

	all, err := f.svc.List(ctx, domain.ListRequest{InsurerID: f.insurerID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	var count int64
	require.NoError(t, f.db.Model(&domain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	_, err = f.svc.Archive(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
