package observability

import (
	"testing"

	"github.com/smallbiznis/polisa/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment: "test",
		AppVersion:  "1.0.0",
		Telemetry:   config.TelemetryConfig{SamplingRatio: 7, OtlpProtocol: "http/protobuf"},
	})
	assert.Equal(t, "polisa", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.True(t, cfg.Debug())
}

func TestDebugFollowsLevelOutsideDev(t *testing.T) {
	cfg := Config{Environment: "production", LogLevel: "info"}
	assert.False(t, cfg.Debug())
	cfg.LogLevel = "debug"
	assert.True(t, cfg.Debug())
}
