package config

import (
	"testing"
	"time"
)

func TestDefaultResilienceConfig(t *testing.T) {
	testCases := []struct {
		name     string
		config   RetryConfig
		attempts int
		initial  time.Duration
		maxWait  time.Duration
		timeout  time.Duration
	}{
		{"SheetRead", DefaultResilienceConfig.SheetRead, 3, 500 * time.Millisecond, 5 * time.Second, 30 * time.Second},
		{"SheetWrite", DefaultResilienceConfig.SheetWrite, 3, 1 * time.Second, 10 * time.Second, 30 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.config.MaxAttempts != tc.attempts {
				t.Errorf("Expected MaxAttempts %d, got %d", tc.attempts, tc.config.MaxAttempts)
			}
			if tc.config.InitialWait != tc.initial {
				t.Errorf("Expected InitialWait %v, got %v", tc.initial, tc.config.InitialWait)
			}
			if tc.config.MaxWait != tc.maxWait {
				t.Errorf("Expected MaxWait %v, got %v", tc.maxWait, tc.config.MaxWait)
			}
			if tc.config.Multiplier != 2.0 {
				t.Errorf("Expected Multiplier 2.0, got %f", tc.config.Multiplier)
			}
			if tc.config.Timeout != tc.timeout {
				t.Errorf("Expected Timeout %v, got %v", tc.timeout, tc.config.Timeout)
			}
		})
	}
}

func TestDefaultResilienceConfigImmutability(t *testing.T) {
	original := DefaultResilienceConfig

	modified := DefaultResilienceConfig
	modified.SheetRead.MaxAttempts = 999

	if DefaultResilienceConfig.SheetRead.MaxAttempts != original.SheetRead.MaxAttempts {
		t.Error("DefaultResilienceConfig was unexpectedly modified")
	}
}

func TestRetryConfigBackoff(t *testing.T) {
	config := RetryConfig{
		MaxAttempts: 5,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     3 * time.Second,
		Multiplier:  2.0,
	}

	testCases := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 500 * time.Millisecond},
		{0, 500 * time.Millisecond},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second}, // capped
		{10, 3 * time.Second},
	}

	for _, tc := range testCases {
		if got := config.Backoff(tc.attempt); got != tc.expected {
			t.Errorf("Backoff(%d): expected %v, got %v", tc.attempt, tc.expected, got)
		}
	}

	t.Run("MultiplierBelowOne", func(t *testing.T) {
		flat := RetryConfig{InitialWait: time.Second, MaxWait: 10 * time.Second, Multiplier: 0}
		if got := flat.Backoff(4); got != time.Second {
			t.Errorf("Expected flat backoff of 1s, got %v", got)
		}
	})

	t.Run("NoCap", func(t *testing.T) {
		uncapped := RetryConfig{InitialWait: time.Millisecond, Multiplier: 3}
		if got := uncapped.Backoff(2); got != 9*time.Millisecond {
			t.Errorf("Expected 9ms, got %v", got)
		}
	})
}
