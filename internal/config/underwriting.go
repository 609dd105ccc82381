package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// UnderwritingConfig carries the fallback values used when an interception
// rule omits a numeric field.
type UnderwritingConfig struct {
	MinInsuredCount        int      `mapstructure:"min_insured_count"`
	MinAge                 int      `mapstructure:"min_age"`
	MaxAge                 int      `mapstructure:"max_age"`
	MaxPoliciesPerEmployee int      `mapstructure:"max_policies_per_employee"`
	DuplicateStatuses      []string `mapstructure:"duplicate_statuses"`
	PolicyStatuses         []string `mapstructure:"policy_statuses"`
}

func DefaultUnderwritingConfig() UnderwritingConfig {
	return UnderwritingConfig{
		MinInsuredCount:        3,
		MinAge:                 16,
		MaxAge:                 65,
		MaxPoliciesPerEmployee: 1,
		DuplicateStatuses:      []string{"draft", "pending_underwriting", "active"},
		PolicyStatuses:         []string{"active"},
	}
}

type UnderwritingConfigHolder struct {
	current atomic.Value // holds UnderwritingConfig
}

func NewUnderwritingConfigHolder(log *zap.Logger) (*UnderwritingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("underwriting.config")

	v := viper.New()

	v.SetConfigName("underwriting")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/polisa/config")
	v.AddConfigPath("/etc/polisa")
	v.AddConfigPath(".")

	v.SetEnvPrefix("POLISA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultUnderwritingConfig()
	v.SetDefault("underwriting.min_insured_count", defaults.MinInsuredCount)
	v.SetDefault("underwriting.min_age", defaults.MinAge)
	v.SetDefault("underwriting.max_age", defaults.MaxAge)
	v.SetDefault("underwriting.max_policies_per_employee", defaults.MaxPoliciesPerEmployee)
	v.SetDefault("underwriting.duplicate_statuses", defaults.DuplicateStatuses)
	v.SetDefault("underwriting.policy_statuses", defaults.PolicyStatuses)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg UnderwritingConfig
	if err := v.UnmarshalKey("underwriting", &cfg); err != nil {
		return nil, err
	}
	if err := validateUnderwritingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &UnderwritingConfigHolder{}
	holder.current.Store(cfg)

	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated UnderwritingConfig
		if err := v.UnmarshalKey("underwriting", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateUnderwritingConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticUnderwritingConfigHolder returns a holder that never reloads.
func NewStaticUnderwritingConfigHolder(cfg UnderwritingConfig) *UnderwritingConfigHolder {
	holder := &UnderwritingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *UnderwritingConfigHolder) Get() UnderwritingConfig {
	if h == nil {
		return DefaultUnderwritingConfig()
	}
	cfg, ok := h.current.Load().(UnderwritingConfig)
	if !ok {
		return DefaultUnderwritingConfig()
	}
	return cfg
}

func validateUnderwritingConfig(cfg UnderwritingConfig) error {
	if cfg.MinInsuredCount < 0 {
		return errors.New("underwriting.min_insured_count cannot be negative")
	}
	if cfg.MinAge < 0 || cfg.MaxAge < 0 {
		return errors.New("underwriting age bounds cannot be negative")
	}
	if cfg.MinAge > cfg.MaxAge {
		return errors.New("underwriting.min_age cannot exceed underwriting.max_age")
	}
	if cfg.MaxPoliciesPerEmployee < 1 {
		return errors.New("underwriting.max_policies_per_employee must be at least 1")
	}
	if len(cfg.DuplicateStatuses) == 0 {
		return errors.New("underwriting.duplicate_statuses cannot be empty")
	}
	if len(cfg.PolicyStatuses) == 0 {
		return errors.New("underwriting.policy_statuses cannot be empty")
	}
	return nil
}
