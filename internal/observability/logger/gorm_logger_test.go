package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("  select id from rates"))
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "INSERT", operationFromSQL("INSERT INTO applications (id) VALUES (?)"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerParamsFilter(t *testing.T) {
	l := NewGormLogger(DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "SELECT * FROM insured_persons WHERE id_number = ?", "110101199001011234")
	assert.Equal(t, "SELECT * FROM insured_persons WHERE id_number = ?", sql)
	assert.Nil(t, params)

	cfg := DefaultGormLoggerConfig()
	cfg.KeepParams = true
	_, params = NewGormLogger(cfg).ParamsFilter(context.Background(), "SELECT 1", 1)
	assert.Equal(t, []interface{}{1}, params)
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(DefaultGormLoggerConfig())
	silent := l.LogMode(gormlogger.Silent).(*GormLogger)
	assert.Equal(t, gormlogger.Silent, silent.cfg.Level)
	assert.Equal(t, gormlogger.Warn, l.cfg.Level)
}
