// Package lethe provides a TinyLFU-based cache admission and eviction engine.
//
// Lethe is the policy core of a cache: it decides which keys are worth
// keeping, evicts on overflow using a frequency-aware W-TinyLFU policy,
// expires entries through a hierarchical timer wheel and adaptively
// rebalances its window/protected regions to maximise the observed hit
// ratio. Values are never stored; callers keep them keyed by the same
// 64-bit fingerprint.
//
// Example usage:
//
//	engine := lethe.New(10_000)
//
//	evicted := engine.Set([]lethe.SetRequest{{Key: fp, TTL: int64(time.Hour)}})
//	engine.Access([]uint64{fp})
//	expired := engine.Advance()
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

const (
	// Version of the Lethe engine library
	Version = "v0.1.0-dev"

	// DefaultCapacity is the default maximum number of tracked keys
	DefaultCapacity = 10_000

	// DefaultWindowRatio is the default share of capacity given to the
	// admission window
	DefaultWindowRatio = 0.01 // 1%

	// DefaultProtectedRatio is the default share of the main region given
	// to the protected segment
	DefaultProtectedRatio = 0.80 // 80%
)
