package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polisa/internal/clock"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	liabilityrepo "github.com/smallbiznis/polisa/internal/liability/repository"
	"github.com/smallbiznis/polisa/internal/plan/domain"
	"github.com/smallbiznis/polisa/internal/plan/repository"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	productrepo "github.com/smallbiznis/polisa/internal/product/repository"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       domain.Service
	productID int64
	insurerID int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &productdomain.Product{}, &liabilitydomain.Liability{}, &domain.Plan{}, &domain.PlanLiability{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Now().UTC()
	product := productdomain.Product{ID: node.Generate().Int64(), InsurerID: 42, Code: "group-accident", Name: "Group Accident", Type: "accident", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Omit("metadata").Create(&product).Error)

	return &fixture{
		db:   db,
		node: node,
		svc: New(Params{
			DB:          db,
			Log:         zap.NewNop(),
			GenID:       node,
			Clock:       clock.NewFakeClock(now),
			Repo:        repository.Provide(),
			Products:    productrepo.Provide(),
			Liabilities: liabilityrepo.Provide(),
		}),
		productID: product.ID,
		insurerID: product.InsurerID,
	}
}

func (f *fixture) liability(t *testing.T, code string, insurerID int64) int64 {
	t.Helper()
	now := time.Now().UTC()
	l := liabilitydomain.Liability{ID: f.node.Generate().Int64(), InsurerID: insurerID, Code: code, Name: code, Type: "main", Unit: liabilitydomain.UnitAmount, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.db.Create(&l).Error)
	return l.ID
}

func TestCreatePlan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	productID := snowflake.ID(f.productID).String()

	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		ProductID: productID,
		Name:      "Plan A",
		Durations: []string{"1年", " 6个月 ", "1年"},
	})
	require.NoError(t, err)
	assert.Equal(t, "plan-a", resp.Code)
	assert.Equal(t, []string{"1年", "6个月"}, resp.Durations)
	assert.Equal(t, 1, resp.JobClassMin)
	assert.Equal(t, 6, resp.JobClassMax)
	assert.Equal(t, domain.PaymentTypeAnnual, resp.PaymentType)

	got, err := f.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1年", "6个月"}, got.Durations)

	list, err := f.svc.ListByProduct(ctx, domain.ListRequest{ProductID: productID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.Create(ctx, domain.CreateRequest{ProductID: productID, Name: "Plan A"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestCreatePlanValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	productID := snowflake.ID(f.productID).String()
	three, two := 3, 2

	_, err := f.svc.Create(ctx, domain.CreateRequest{ProductID: productID, Name: "P", JobClassMin: &three, JobClassMax: &two})
	assert.ErrorIs(t, err, domain.ErrInvalidJobClassRange)

	_, err = f.svc.Create(ctx, domain.CreateRequest{ProductID: productID, Name: "P", Durations: []string{"half a year"}})
	assert.ErrorIs(t, err, domain.ErrInvalidDurations)

	_, err = f.svc.Create(ctx, domain.CreateRequest{ProductID: productID, Name: "P", PaymentType: "weekly"})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)

	_, err = f.svc.Create(ctx, domain.CreateRequest{ProductID: "123", Name: "P"})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestBindLiability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	plan, err := f.svc.Create(ctx, domain.CreateRequest{ProductID: snowflake.ID(f.productID).String(), Name: "Plan A"})
	require.NoError(t, err)
	death := f.liability(t, "death", f.insurerID)
	medical := f.liability(t, "medical", f.insurerID)
	foreign := f.liability(t, "foreign", f.insurerID+1)

	def := "500000"
	bound, err := f.svc.BindLiability(ctx, domain.BindLiabilityRequest{
		PlanID:          plan.ID,
		LiabilityID:     snowflake.ID(death).String(),
		Required:        true,
		CoverageOptions: []string{"100000.00", "500000", "100000"},
		DefaultCoverage: &def,
		DisplayOrder:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, "death", bound.LiabilityCode)
	assert.Equal(t, []string{"100000", "500000"}, bound.CoverageOptions)

	_, err = f.svc.BindLiability(ctx, domain.BindLiabilityRequest{
		PlanID:          plan.ID,
		LiabilityID:     snowflake.ID(medical).String(),
		CoverageOptions: []string{"10000"},
		DisplayOrder:    1,
	})
	require.NoError(t, err)

	// rebinding updates in place
	rebound, err := f.svc.BindLiability(ctx, domain.BindLiabilityRequest{
		PlanID:          plan.ID,
		LiabilityID:     snowflake.ID(death).String(),
		CoverageOptions: []string{"200000"},
		DisplayOrder:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, bound.ID, rebound.ID)
	assert.False(t, rebound.Required)

	items, err := f.svc.ListLiabilities(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "medical", items[0].LiabilityCode)
	assert.Equal(t, "death", items[1].LiabilityCode)
	assert.Equal(t, []string{"200000"}, items[1].CoverageOptions)

	_, err = f.svc.BindLiability(ctx, domain.BindLiabilityRequest{PlanID: plan.ID, LiabilityID: snowflake.ID(medical).String()})
	assert.ErrorIs(t, err, domain.ErrInvalidCoverageOptions)

	_, err = f.svc.BindLiability(ctx, domain.BindLiabilityRequest{PlanID: plan.ID, LiabilityID: snowflake.ID(medical).String(), CoverageOptions: []string{"ten thousand"}})
	assert.ErrorIs(t, err, domain.ErrInvalidCoverageOptions)

	missing := "999"
	_, err = f.svc.BindLiability(ctx, domain.BindLiabilityRequest{PlanID: plan.ID, LiabilityID: snowflake.ID(medical).String(), CoverageOptions: []string{"1"}, DefaultCoverage: &missing})
	assert.ErrorIs(t, err, domain.ErrInvalidDefaultCoverage)

	_, err = f.svc.BindLiability(ctx, domain.BindLiabilityRequest{PlanID: plan.ID, LiabilityID: snowflake.ID(foreign).String(), CoverageOptions: []string{"1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidLiability)
}
