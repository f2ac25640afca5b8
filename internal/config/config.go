package config

import (
	"fmt"
	"os"
	"strings"

	queue "github.com/babylonchain/staking-queue-client/config"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Db      DbConfig          `mapstructure:"db"`
	Queue   queue.QueueConfig `mapstructure:"queue"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
	Ledger  LedgerConfig      `mapstructure:"ledger"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	if err := cfg.Db.Validate(); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	if cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics port %d collides with the server port", cfg.Metrics.Port)
	}

	if err := cfg.Queue.Validate(); err != nil {
		return err
	}

	if err := cfg.Ledger.Validate(); err != nil {
		return err
	}

	return nil
}

// New returns a fully parsed Config object from a given file directory
func New(cfgFile string) (*Config, error) {
	_, err := os.Stat(cfgFile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)

	v.AutomaticEnv()
	/*
		Nested fields in yml are replaced with `_` and any `-` with `__` when overriding via env variables:
		1. `some.config.a` can be overridden by `SOME_CONFIG_A`
		2. `some.config-a` can be overridden by `SOME_CONFIG__A`
		`-` is not supported in env variable names by every shell.
	*/
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "__"))
	setDefaults(v)

	err = v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err = v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults lets the metrics and ledger sections be omitted from the file.
func setDefaults(v *viper.Viper) {
	metrics := DefaultMetricsConfig()
	v.SetDefault("metrics.host", metrics.Host)
	v.SetDefault("metrics.port", metrics.Port)

	ledger := DefaultLedgerConfig()
	v.SetDefault("ledger.max-commit-attempts", ledger.MaxCommitAttempts)
	v.SetDefault("ledger.lock-timeout", ledger.LockTimeout)
	v.SetDefault("ledger.receipt-cache-ttl", ledger.ReceiptCacheTTL)
	v.SetDefault("ledger.rate-limit", ledger.RateLimit)
	v.SetDefault("ledger.rate-burst", ledger.RateBurst)
	v.SetDefault("ledger.collateral-alert-ratio", ledger.CollateralAlertRatio)
}
