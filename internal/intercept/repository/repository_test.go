package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/polisa/internal/intercept/domain"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLookupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := dbtest.Open(t)

	require.NoError(t, db.Exec(`CREATE TABLE applications (
		id BIGINT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		insurer_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE insured_persons (
		id BIGINT PRIMARY KEY,
		application_id BIGINT NOT NULL,
		id_number TEXT NOT NULL
	)`).Error)

	now := time.Now().UTC()
	apps := []struct {
		id, product, insurer int64
		status               string
	}{
		{1, 100, 10, "active"},
		{2, 100, 10, "rejected"},
		{3, 200, 10, "active"},
		{4, 100, 10, "draft"},
	}
	for _, a := range apps {
		require.NoError(t, db.Exec(`INSERT INTO applications (id, product_id, insurer_id, status, created_at) VALUES (?, ?, ?, ?, ?)`,
			a.id, a.product, a.insurer, a.status, now).Error)
	}
	persons := []struct {
		id, app  int64
		idNumber string
	}{
		{1, 1, "A"},
		{2, 2, "B"},
		{3, 3, "A"},
		{4, 4, "C"},
		{5, 1, "C"},
	}
	for _, p := range persons {
		require.NoError(t, db.Exec(`INSERT INTO insured_persons (id, application_id, id_number) VALUES (?, ?, ?)`,
			p.id, p.app, p.idNumber).Error)
	}
	return db
}

func TestHasOpenApplication(t *testing.T) {
	db := setupLookupDB(t)
	l := Provide()
	ctx := context.Background()
	open := []string{"draft", "pending_underwriting", "active"}

	found, err := l.HasOpenApplication(ctx, db, domain.PersonQuery{Scope: domain.ScopeProduct, ScopeID: 100, Statuses: open, IDNumber: "A"})
	require.NoError(t, err)
	assert.True(t, found)

	// rejected applications do not count
	found, err = l.HasOpenApplication(ctx, db, domain.PersonQuery{Scope: domain.ScopeProduct, ScopeID: 100, Statuses: open, IDNumber: "B"})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = l.HasOpenApplication(ctx, db, domain.PersonQuery{Scope: domain.ScopeProduct, ScopeID: 300, Statuses: open, IDNumber: "A"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCountPolicies(t *testing.T) {
	db := setupLookupDB(t)
	l := Provide()
	ctx := context.Background()
	active := []string{"active"}

	count, err := l.CountPolicies(ctx, db, domain.PersonQuery{Scope: domain.ScopeProduct, ScopeID: 100, Statuses: active, IDNumber: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = l.CountPolicies(ctx, db, domain.PersonQuery{Scope: domain.ScopeInsurer, ScopeID: 10, Statuses: active, IDNumber: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// the draft application is not a policy
	count, err = l.CountPolicies(ctx, db, domain.PersonQuery{Scope: domain.ScopeProduct, ScopeID: 100, Statuses: active, IDNumber: "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLookupSeesTransaction(t *testing.T) {
	db := setupLookupDB(t)
	l := Provide()
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, tx.Exec(`INSERT INTO applications (id, product_id, insurer_id, status, created_at) VALUES (9, 500, 50, 'draft', ?)`, time.Now().UTC()).Error)
		require.NoError(t, tx.Exec(`INSERT INTO insured_persons (id, application_id, id_number) VALUES (9, 9, 'Z')`).Error)

		found, err := l.HasOpenApplication(ctx, tx, domain.PersonQuery{Scope: domain.ScopeProduct, ScopeID: 500, Statuses: []string{"draft"}, IDNumber: "Z"})
		require.NoError(t, err)
		assert.True(t, found)
		return nil
	})
	require.NoError(t, err)
}
