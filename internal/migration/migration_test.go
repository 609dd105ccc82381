package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestEmbeddedMigrationsPaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestEmbeddedMigrationsCoverModels(t *testing.T) {
	var all strings.Builder
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		raw, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		all.Write(raw)
	}

	for _, model := range Models() {
		tabler, ok := model.(schema.Tabler)
		require.True(t, ok, "%T has no table name", model)
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+tabler.TableName()+" (")
	}
}

func TestAutoMigrate(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, AutoMigrate(db))

	for _, model := range Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
	assert.Error(t, AutoMigrate(nil))
}
