package scheduler

import (
	"time"

	"github.com/smallbiznis/polisa/internal/config"
)

// Config controls scheduler intervals and batch sizes. The scheduler only
// starts when Enabled is set.
type Config struct {
	Enabled     bool
	RunInterval time.Duration
	BatchSize   int
	JobTimeout  time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 5 * time.Minute,
		BatchSize:   100,
		JobTimeout:  30 * time.Second,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:     cfg.Scheduler.Enabled,
		RunInterval: time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second,
		BatchSize:   cfg.Scheduler.BatchSize,
		EnabledJobs: cfg.Scheduler.Jobs,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
