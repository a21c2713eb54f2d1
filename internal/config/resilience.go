package config

import (
	"math"
	"time"
)

// Retry configuration constants
const (
	// Sheet Read retry configuration
	SheetReadMaxAttempts       = 3
	SheetReadInitialWait       = 500 * time.Millisecond
	SheetReadMaxWait           = 5 * time.Second
	SheetReadBackoffMultiplier = 2.0
	SheetReadTimeout           = 30 * time.Second

	// Sheet Write retry configuration
	SheetWriteMaxAttempts       = 3
	SheetWriteInitialWait       = 1 * time.Second
	SheetWriteMaxWait           = 10 * time.Second
	SheetWriteBackoffMultiplier = 2.0
	SheetWriteTimeout           = 30 * time.Second
)

// RetryConfig defines retry behavior for operations
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Timeout     time.Duration
}

// Backoff returns the wait before retry number attempt (zero-based),
// growing by Multiplier and capped at MaxWait.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	multiplier := c.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	wait := time.Duration(float64(c.InitialWait) * math.Pow(multiplier, float64(attempt)))
	if c.MaxWait > 0 && (wait > c.MaxWait || wait < 0) {
		return c.MaxWait
	}
	return wait
}

// ResilienceConfig contains all retry configurations
type ResilienceConfig struct {
	SheetRead  RetryConfig
	SheetWrite RetryConfig
}

// DefaultResilienceConfig provides sensible defaults
var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: RetryConfig{
		MaxAttempts: SheetReadMaxAttempts,
		InitialWait: SheetReadInitialWait,
		MaxWait:     SheetReadMaxWait,
		Multiplier:  SheetReadBackoffMultiplier,
		Timeout:     SheetReadTimeout,
	},
	SheetWrite: RetryConfig{
		MaxAttempts: SheetWriteMaxAttempts,
		InitialWait: SheetWriteInitialWait,
		MaxWait:     SheetWriteMaxWait,
		Multiplier:  SheetWriteBackoffMultiplier,
		Timeout:     SheetWriteTimeout,
	},
}
