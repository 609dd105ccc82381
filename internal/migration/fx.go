package migration

import (
	"github.com/smallbiznis/polisa/internal/config"
	"github.com/smallbiznis/polisa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Applied is provided once the schema is current. Startup writers such as
// the demo seed depend on it.
type Applied struct{}

var Module = fx.Module("migrations",
	fx.Provide(apply),
	fx.Invoke(func(Applied) {}),
)

func apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) (Applied, error) {
	if !db.IsMySQL(cfg) {
		log.Info("applying schema with auto migrate", zap.String("db_type", cfg.DBType))
		return Applied{}, AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return Applied{}, err
	}
	return Applied{}, RunMigrations(sqlDB)
}
