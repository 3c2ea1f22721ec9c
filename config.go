// config.go: configuration for Lethe
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import (
	"github.com/agilira/go-timecache"
)

// Config holds configuration parameters for the engine.
type Config struct {
	// Capacity is the maximum number of keys the engine tracks.
	// Values <= 0 are replaced by DefaultCapacity. Default: DefaultCapacity.
	Capacity int

	// WindowRatio is the share of capacity given to the admission window.
	// Must be between 0.0 and 1.0 exclusive. Default: DefaultWindowRatio.
	WindowRatio float64

	// ProtectedRatio is the share of the main region given to the
	// protected segment. Must be between 0.0 and 1.0 exclusive.
	// Default: DefaultProtectedRatio.
	ProtectedRatio float64

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for the engine clock.
	// If nil, a default implementation is used. Default: system time.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector
}

// Validate checks configuration parameters and applies sensible defaults.
// Returns nil (no actual validation errors, only normalization).
//
// This method is automatically called by New and NewWithConfig, so you
// typically don't need to call it manually. However, it's provided as a
// public API if you want to inspect the normalized configuration before
// creating an engine.
//
// Default values applied:
//   - Capacity: DefaultCapacity (10,000) if <= 0 (a zero from an explicit
//     construction path is floored to 1 by the policy)
//   - WindowRatio: DefaultWindowRatio (0.01) if <= 0 or >= 1
//   - ProtectedRatio: DefaultProtectedRatio (0.80) if <= 0 or >= 1
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}

	if c.WindowRatio <= 0 || c.WindowRatio >= 1 {
		c.WindowRatio = DefaultWindowRatio
	}

	if c.ProtectedRatio <= 0 || c.ProtectedRatio >= 1 {
		c.ProtectedRatio = DefaultProtectedRatio
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:         DefaultCapacity,
		WindowRatio:      DefaultWindowRatio,
		ProtectedRatio:   DefaultProtectedRatio,
		Logger:           NoOpLogger{},
		TimeProvider:     &systemTimeProvider{},
		MetricsCollector: NoOpMetricsCollector{},
	}
}

// systemTimeProvider is the default time provider using go-timecache.
// This provides ~121x faster time access compared to time.Now() with zero allocations.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
