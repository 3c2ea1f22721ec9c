// interfaces.go: public interfaces for Lethe
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

// CacheStats provides statistics about engine activity.
type CacheStats struct {
	// Hits is the number of accesses that found a tracked key
	Hits uint64

	// Misses is the number of accesses that found nothing
	Misses uint64

	// Sets is the number of keys admitted or refreshed
	Sets uint64

	// Removes is the number of explicit removals
	Removes uint64

	// Evictions is the number of keys evicted by the policy
	Evictions uint64

	// Expirations is the number of keys reaped by TTL expiry
	Expirations uint64

	// Size is the current number of tracked keys
	Size int

	// Capacity is the maximum number of keys the engine can track
	Capacity int
}

// HitRatio returns the hit ratio as a percentage (0-100).
func (s CacheStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// DebugInfo exposes the per-region breakdown of the policy state.
type DebugInfo struct {
	// Len is the number of keys tracked by the policy
	Len int

	// WindowLen is the number of keys in the admission window
	WindowLen int

	// ProbationLen is the number of keys in the probation segment
	ProbationLen int

	// ProtectedLen is the number of keys in the protected segment
	ProtectedLen int
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// This interface allows injecting optimized time implementations.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector is used for collecting operation metrics.
// Implementations must be fast and non-blocking; use it to integrate with
// Prometheus, OpenTelemetry or other monitoring systems.
type MetricsCollector interface {
	// RecordSet records a set operation and its latency.
	RecordSet(latencyNs int64)

	// RecordAccess records an access and whether it hit a tracked key.
	RecordAccess(latencyNs int64, hit bool)

	// RecordRemove records an explicit removal.
	RecordRemove(latencyNs int64)

	// RecordEviction records a policy eviction.
	RecordEviction()

	// RecordExpiration records a TTL expiration.
	RecordExpiration()
}

// NoOpMetricsCollector is a collector that does nothing. Used as default
// so the hot path never checks for nil.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordSet(latencyNs int64)              {}
func (NoOpMetricsCollector) RecordAccess(latencyNs int64, hit bool) {}
func (NoOpMetricsCollector) RecordRemove(latencyNs int64)           {}
func (NoOpMetricsCollector) RecordEviction()                        {}
func (NoOpMetricsCollector) RecordExpiration()                      {}
