package observability

import (
	"strings"

	"github.com/smallbiznis/polisa/internal/config"
)

const defaultSamplingRatio = 0.1

// Config is the telemetry view of the application config shared by the
// logger, tracer and meter providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             cfg.Telemetry.LogLevel,
		LogFormat:            cfg.Telemetry.LogFormat,
		OtelEnabled:          cfg.Telemetry.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		OtelExporterProtocol: cfg.Telemetry.OtlpProtocol,
		OtelSamplingRatio:    cfg.Telemetry.SamplingRatio,
	}
	if out.ServiceName == "" {
		out.ServiceName = "polisa"
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	if out.LogFormat == "" {
		out.LogFormat = "json"
	}
	switch out.OtelExporterProtocol {
	case "http", "http/protobuf":
		out.OtelExporterProtocol = "http"
	default:
		out.OtelExporterProtocol = "grpc"
	}
	if out.OtelSamplingRatio <= 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = defaultSamplingRatio
	}
	return out
}

// Debug turns on verbose logging for debug level or any local environment.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
