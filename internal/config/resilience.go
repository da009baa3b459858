package config

import (
	"time"

	"blasting_tracker/internal/retry"
)

type ResilienceConfig struct {
	SheetRead    retry.Config
	SheetWrite   retry.Config
	Notification retry.Config
}

// DefaultResilienceConfig leaves Retryable unset; the sheet clients fill in
// their own error classification.
var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: retry.Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	SheetWrite: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    15 * time.Second,
	},
	Notification: retry.Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    10 * time.Second,
	},
}

// NoRetry runs every operation exactly once.
var NoRetry = ResilienceConfig{
	SheetRead:    retry.Config{Timeout: 15 * time.Second},
	SheetWrite:   retry.Config{Timeout: 15 * time.Second},
	Notification: retry.Config{Timeout: 10 * time.Second},
}
