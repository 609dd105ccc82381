package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	"github.com/smallbiznis/polisa/internal/clock"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	insurerrepo "github.com/smallbiznis/polisa/internal/insurer/repository"
	"github.com/smallbiznis/polisa/internal/liability/domain"
	"github.com/smallbiznis/polisa/internal/liability/repository"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	pkgrepo "github.com/smallbiznis/polisa/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupService(t *testing.T) (domain.Service, int64, int64) {
	t.Helper()
	db := dbtest.Open(t, &insurerdomain.Insurer{}, &clausedomain.Clause{}, &domain.Liability{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Now().UTC()
	insurer := insurerdomain.Insurer{ID: node.Generate().Int64(), Code: "pingan", Name: "Ping An", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&insurer).Error)
	other := insurerdomain.Insurer{ID: node.Generate().Int64(), Code: "cpic", Name: "CPIC", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&other).Error)
	clause := clausedomain.Clause{ID: node.Generate().Int64(), InsurerID: other.ID, Code: "c1", Name: "Clause", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&clause).Error)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(now),
		Repo:     repository.Provide(),
		Insurers: insurerrepo.Provide(),
		Clauses:  pkgrepo.ProvideStore[clausedomain.Clause](db),
	})
	return svc, insurer.ID, clause.ID
}

func TestCreateLiability(t *testing.T) {
	svc, insurerID, _ := setupService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		InsurerID: snowflake.ID(insurerID).String(),
		Name:      "Accidental Death",
		Type:      "death",
	})
	require.NoError(t, err)
	assert.Equal(t, "accidental-death", resp.Code)
	assert.Equal(t, domain.UnitAmount, resp.Unit)
	assert.Nil(t, resp.ClauseID)

	got, err := svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Name, got.Name)

	_, err = svc.Create(ctx, domain.CreateRequest{
		InsurerID: snowflake.ID(insurerID).String(),
		Name:      "Accidental Death",
		Type:      "death",
	})
	assert.ErrorIs(t, err, domain.ErrCodeExists)

	list, err := svc.List(ctx, domain.ListRequest{InsurerID: snowflake.ID(insurerID).String()})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateLiabilityValidation(t *testing.T) {
	svc, insurerID, foreignClauseID := setupService(t)
	ctx := context.Background()
	insurer := snowflake.ID(insurerID).String()

	_, err := svc.Create(ctx, domain.CreateRequest{InsurerID: insurer, Name: "Medical", Type: "medical", Unit: "percent"})
	assert.ErrorIs(t, err, domain.ErrInvalidUnit)

	_, err = svc.Create(ctx, domain.CreateRequest{InsurerID: insurer, Name: "Medical", Type: "medical", ClauseID: "12345"})
	assert.ErrorIs(t, err, domain.ErrInvalidClause)

	// clause of another insurer
	_, err = svc.Create(ctx, domain.CreateRequest{InsurerID: insurer, Name: "Medical", Type: "medical", ClauseID: snowflake.ID(foreignClauseID).String()})
	assert.ErrorIs(t, err, domain.ErrInvalidClause)

	_, err = svc.Create(ctx, domain.CreateRequest{InsurerID: "99", Name: "Medical", Type: "medical"})
	assert.ErrorIs(t, err, domain.ErrInvalidInsurer)

	_, err = svc.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
