// errors_test.go: tests for structured error construction and classification
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import (
	goerrors "errors"
	"testing"

	"github.com/agilira/go-errors"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"invalid capacity", NewErrInvalidCapacity(0), ErrCodeInvalidCapacity},
		{"invalid ratio", NewErrInvalidRatio("window_ratio", 1.5), ErrCodeInvalidRatio},
		{"invalid ttl", NewErrInvalidTTL(-7), ErrCodeInvalidTTL},
		{"policy inconsistency", NewErrPolicyInconsistency(42, "missing index"), ErrCodePolicyInconsistency},
		{"wheel inconsistency", NewErrWheelInconsistency(42, 9, 0, "level out of bounds"), ErrCodeWheelInconsistency},
		{"metadata inconsistency", NewErrMetadataInconsistency(42, "entry missing"), ErrCodeMetadataInconsistency},
		{"state corruption", NewErrStateCorruption("evict", goerrors.New("boom")), ErrCodeStateCorruption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("constructor returned nil")
			}
			if got := GetErrorCode(tt.err); got != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, got)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	policyErr := NewErrPolicyInconsistency(1, "missing index")
	wheelErr := NewErrWheelInconsistency(1, 0, 0, "slot out of bounds")
	metaErr := NewErrMetadataInconsistency(1, "entry missing")
	validationErr := NewErrInvalidCapacity(-1)

	if !IsPolicyInconsistency(policyErr) {
		t.Error("policy error not classified")
	}
	if IsPolicyInconsistency(wheelErr) {
		t.Error("wheel error misclassified as policy")
	}
	if !IsWheelInconsistency(wheelErr) {
		t.Error("wheel error not classified")
	}
	if !IsMetadataInconsistency(metaErr) {
		t.Error("metadata error not classified")
	}

	for _, err := range []error{policyErr, wheelErr, metaErr} {
		if !IsInternalError(err) {
			t.Errorf("%v not classified as internal", err)
		}
		if IsValidationError(err) {
			t.Errorf("%v misclassified as validation", err)
		}
	}

	if !IsValidationError(validationErr) {
		t.Error("validation error not classified")
	}
	if IsInternalError(validationErr) {
		t.Error("validation error misclassified as internal")
	}
}

func TestErrorContext(t *testing.T) {
	err := NewErrWheelInconsistency(42, 3, 7, "slot mismatch")

	ctx := GetErrorContext(err)
	if ctx == nil {
		t.Fatal("expected context")
	}
	if ctx["key"] != uint64(42) {
		t.Errorf("expected key 42 in context, got %v", ctx["key"])
	}
	if ctx["level"] != 3 || ctx["slot"] != 7 {
		t.Errorf("expected level 3 / slot 7, got %v / %v", ctx["level"], ctx["slot"])
	}
}

func TestErrorHelpers_NilSafety(t *testing.T) {
	if IsPolicyInconsistency(nil) || IsWheelInconsistency(nil) ||
		IsMetadataInconsistency(nil) || IsValidationError(nil) || IsInternalError(nil) {
		t.Error("nil classified as an error kind")
	}
	if GetErrorCode(nil) != "" {
		t.Error("nil produced an error code")
	}
	if GetErrorContext(nil) != nil {
		t.Error("nil produced a context")
	}

	plain := goerrors.New("plain")
	if IsInternalError(plain) || IsValidationError(plain) {
		t.Error("plain error classified as engine error")
	}
	if GetErrorCode(plain) != "" {
		t.Error("plain error produced a code")
	}
}
