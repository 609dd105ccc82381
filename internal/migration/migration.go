package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table owned by the service, in creation order.
func Models() []any {
	return []any{
		&insurerdomain.Insurer{},
		&insurerdomain.ChannelConfig{},
		&productdomain.Product{},
		&clausedomain.Clause{},
		&liabilitydomain.Liability{},
		&plandomain.Plan{},
		&plandomain.PlanLiability{},
		&ratedomain.Rate{},
		&appdomain.Company{},
		&appdomain.Application{},
		&appdomain.PlanInstance{},
		&appdomain.LiabilitySelection{},
		&appdomain.InsuredPerson{},
		&auditdomain.AuditLog{},
	}
}

// RunMigrations applies the embedded MySQL migrations. The DSN must allow
// multiple statements.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema from the models for Postgres and SQLite.
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
