// errors.go: structured error handling for Lethe engine operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all engine operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package lethe

import (
	goerrors "errors"
	"strconv"

	"github.com/agilira/go-errors"
)

// Error codes for Lethe engine operations
const (
	// Validation errors
	ErrCodeInvalidCapacity errors.ErrorCode = "LETHE_INVALID_CAPACITY"
	ErrCodeInvalidRatio    errors.ErrorCode = "LETHE_INVALID_RATIO"
	ErrCodeInvalidTTL      errors.ErrorCode = "LETHE_INVALID_TTL"

	// Internal consistency errors
	ErrCodePolicyInconsistency   errors.ErrorCode = "LETHE_POLICY_INCONSISTENCY"
	ErrCodeWheelInconsistency    errors.ErrorCode = "LETHE_WHEEL_INCONSISTENCY"
	ErrCodeMetadataInconsistency errors.ErrorCode = "LETHE_METADATA_INCONSISTENCY"
	ErrCodeStateCorruption       errors.ErrorCode = "LETHE_STATE_CORRUPTION"
)

// Common error messages
const (
	msgInvalidCapacity       = "invalid capacity: must be greater than 0"
	msgInvalidRatio          = "invalid ratio: must be between 0.0 and 1.0"
	msgInvalidTTL            = "invalid TTL: must be -1 (remove) or non-negative"
	msgPolicyInconsistency   = "policy metadata is inconsistent"
	msgWheelInconsistency    = "timer wheel metadata is inconsistent"
	msgMetadataInconsistency = "entry metadata is inconsistent"
	msgStateCorruption       = "internal state corruption detected"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// NewErrInvalidCapacity creates an error for an invalid capacity
func NewErrInvalidCapacity(capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_capacity": capacity,
		"minimum_required":  1,
	})
}

// NewErrInvalidRatio creates an error for an out-of-range ratio
func NewErrInvalidRatio(name string, ratio float64) error {
	return errors.NewWithContext(ErrCodeInvalidRatio, msgInvalidRatio, map[string]interface{}{
		"ratio_name":     name,
		"provided_ratio": ratio,
		"valid_range":    "0.0 < ratio < 1.0",
	})
}

// NewErrInvalidTTL creates an error for an invalid TTL
func NewErrInvalidTTL(ttl int64) error {
	return errors.NewWithField(ErrCodeInvalidTTL, msgInvalidTTL, "provided_ttl", strconv.FormatInt(ttl, 10))
}

// =============================================================================
// INTERNAL CONSISTENCY ERRORS
// =============================================================================

// NewErrPolicyInconsistency creates an error for a policy metadata bug:
// a region-tagged entry missing its list index, or an unknown region tag
// observed in a dispatch.
func NewErrPolicyInconsistency(key uint64, reason string) error {
	return errors.NewWithContext(ErrCodePolicyInconsistency, msgPolicyInconsistency, map[string]interface{}{
		"key":    key,
		"reason": reason,
	}).WithSeverity("critical")
}

// NewErrWheelInconsistency creates an error for a timer wheel bug:
// a level or slot out of bounds during schedule, deschedule or expire.
func NewErrWheelInconsistency(key uint64, level, slot int, reason string) error {
	return errors.NewWithContext(ErrCodeWheelInconsistency, msgWheelInconsistency, map[string]interface{}{
		"key":    key,
		"level":  level,
		"slot":   slot,
		"reason": reason,
	}).WithSeverity("critical")
}

// NewErrMetadataInconsistency creates an error for an entry known to a
// subsystem but missing from the entries map.
func NewErrMetadataInconsistency(key uint64, reason string) error {
	return errors.NewWithContext(ErrCodeMetadataInconsistency, msgMetadataInconsistency, map[string]interface{}{
		"key":    key,
		"reason": reason,
	}).WithSeverity("critical")
}

// NewErrStateCorruption wraps a lower-layer error as a state corruption error
func NewErrStateCorruption(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeStateCorruption, msgStateCorruption).
			WithContext("operation", operation).
			WithSeverity("critical")
	}
	return errors.NewWithField(ErrCodeStateCorruption, msgStateCorruption, "operation", operation).
		WithSeverity("critical")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsPolicyInconsistency checks if error is a policy inconsistency error
func IsPolicyInconsistency(err error) bool {
	return errors.HasCode(err, ErrCodePolicyInconsistency)
}

// IsWheelInconsistency checks if error is a timer wheel inconsistency error
func IsWheelInconsistency(err error) bool {
	return errors.HasCode(err, ErrCodeWheelInconsistency)
}

// IsMetadataInconsistency checks if error is a metadata inconsistency error
func IsMetadataInconsistency(err error) bool {
	return errors.HasCode(err, ErrCodeMetadataInconsistency)
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvalidCapacity || code == ErrCodeInvalidRatio ||
			code == ErrCodeInvalidTTL
	}
	return false
}

// IsInternalError checks if error indicates an internal engine bug
func IsInternalError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodePolicyInconsistency || code == ErrCodeWheelInconsistency ||
			code == ErrCodeMetadataInconsistency || code == ErrCodeStateCorruption
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var letheErr *errors.Error
	if goerrors.As(err, &letheErr) {
		return letheErr.Context
	}
	return nil
}
