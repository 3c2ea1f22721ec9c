// Package lethe provides a single-threaded TinyLFU cache admission and
// eviction engine with TTL expiration.
//
// # Overview
//
// Lethe is the decision core of a cache, not the cache itself. It tracks
// 64-bit key fingerprints and answers one question: which keys are worth
// keeping? Values live with the caller, keyed by the same fingerprint.
//
// Four subsystems cooperate behind the façade:
//
//   - A blocked Count-Min Sketch with 4-bit counters estimates per-key
//     access frequency over a bounded sample window, aging periodically.
//   - A W-TinyLFU policy splits capacity into an admission window and a
//     segmented main region (probation + protected), gating admission from
//     window into main on sketch frequency.
//   - A hill-climbing resizer trades capacity between the window and the
//     protected segment in the direction that improved the sampled hit
//     ratio.
//   - A 5-level hierarchical timer wheel schedules and cascades TTL
//     expirations in O(1) per operation.
//
// # Quick Start
//
//	import "github.com/agilira/lethe"
//
//	engine := lethe.New(10_000)
//
//	// Admit two keys, one with a TTL.
//	evicted := engine.Set([]lethe.SetRequest{
//	    {Key: lethe.Spread(hashOf("user:1"))},
//	    {Key: lethe.Spread(hashOf("user:2")), TTL: int64(time.Minute)},
//	})
//	for _, key := range evicted {
//	    // Drop the corresponding value.
//	}
//
//	// Record accesses.
//	engine.Access([]uint64{lethe.Spread(hashOf("user:1"))})
//
//	// Periodically reap expired keys.
//	for _, key := range engine.Advance() {
//	    // Drop the corresponding value.
//	}
//
// # Concurrency
//
// The engine is deliberately single-threaded: every operation runs to
// completion with no internal locking. Callers sharing an engine across
// goroutines must serialise calls with a mutex.
//
// # Error Handling
//
// Internal inconsistencies surface as structured errors built on
// github.com/agilira/go-errors, carrying error codes (see errors.go) and
// context for debugging. Bulk paths log and continue rather than wedge the
// engine; malformed inputs are clamped or floored with a log record, never
// panics.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package lethe
