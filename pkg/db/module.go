package db

import (
	"context"
	"time"

	"github.com/smallbiznis/polisa/internal/config"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// New opens the connection pool shared by every request.
func New(p Params) (*gorm.DB, error) {
	dialect, err := Dialect(p.Cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialect, &gorm.Config{
		Logger:         obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(p.Cfg.DBName))); err != nil {
		return nil, err
	}

	promCfg := gormprometheus.Config{
		DBName:          p.Cfg.DBName,
		RefreshInterval: 15,
		Labels:          map[string]string{"service": p.Cfg.AppName},
	}
	if IsMySQL(p.Cfg) {
		promCfg.MetricsCollector = []gormprometheus.MetricsCollector{
			&gormprometheus.MySQL{VariableNames: []string{"Threads_running", "Threads_connected"}},
		}
	}
	if err := conn.Use(gormprometheus.New(promCfg)); err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(p.Cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(p.Cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(p.Cfg.DBConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(p.Cfg.DBConnMaxIdleTime) * time.Second)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Log.Info("closing database pool")
			return sqlDB.Close()
		},
	})

	return conn, nil
}
