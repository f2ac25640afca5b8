package config

import (
	"errors"
	"time"
)

// LedgerConfig tunes the redemption engine.
type LedgerConfig struct {
	// Upper bound on store commit attempts when the store reports a write conflict
	MaxCommitAttempts int `mapstructure:"max-commit-attempts"`
	// How long a redemption waits for another redemption against the same issuer
	LockTimeout time.Duration `mapstructure:"lock-timeout"`
	// How long committed receipts are kept in memory for replayed requests
	ReceiptCacheTTL time.Duration `mapstructure:"receipt-cache-ttl"`
	// Requests per second allowed on write endpoints, 0 disables limiting
	RateLimit float64 `mapstructure:"rate-limit"`
	RateBurst int     `mapstructure:"rate-burst"`
	// A COLLATERAL_ALERT event is emitted when an issuer's collateralization
	// ratio falls below this value, 0 disables alerts
	CollateralAlertRatio float64 `mapstructure:"collateral-alert-ratio"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.MaxCommitAttempts <= 0 {
		return errors.New("max-commit-attempts must be greater than 0")
	}

	if cfg.LockTimeout <= 0 {
		return errors.New("lock-timeout must be positive")
	}

	if cfg.ReceiptCacheTTL <= 0 {
		return errors.New("receipt-cache-ttl must be positive")
	}

	if cfg.RateLimit < 0 {
		return errors.New("rate-limit cannot be negative")
	}

	if cfg.RateLimit > 0 && cfg.RateBurst <= 0 {
		return errors.New("rate-burst must be greater than 0 when rate-limit is set")
	}

	if cfg.CollateralAlertRatio < 0 {
		return errors.New("collateral-alert-ratio cannot be negative")
	}

	return nil
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MaxCommitAttempts:    4,
		LockTimeout:          5 * time.Second,
		ReceiptCacheTTL:      10 * time.Minute,
		CollateralAlertRatio: 1,
	}
}
