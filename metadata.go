// metadata.go: per-key entry metadata
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

// Region tags for the policy lists an entry can live in.
const (
	regionNone      uint8 = 0
	regionWindow    uint8 = 1
	regionProbation uint8 = 2
	regionProtected uint8 = 3
)

// entry carries the per-key bookkeeping shared by the policy and the timer
// wheel: which region list the key lives in and where, which wheel bucket
// holds it and where, and the absolute expiration time.
//
// Lists hold keys only; all traversal flows map -> handle -> list.
type entry struct {
	region      uint8
	wheelLevel  uint8
	wheelSlot   uint8
	policyIndex listIndex
	wheelIndex  listIndex
	expire      uint64
}

// newEntry creates an entry outside every region, with no expiration.
func newEntry() *entry {
	return &entry{
		policyIndex: noIndex,
		wheelIndex:  noIndex,
	}
}

// expired reports whether the entry's TTL has elapsed at the given time.
// An expire of 0 means the entry never expires.
func (e *entry) expired(nowNS uint64) bool {
	return e.expire > 0 && e.expire <= nowNS
}

// validate checks the entry's metadata for internal consistency.
func (e *entry) validate() error {
	if e.region > regionProtected {
		return NewErrMetadataInconsistency(0, "region tag out of range")
	}
	if e.region == regionNone {
		if e.policyIndex.valid() {
			return NewErrMetadataInconsistency(0, "untracked entry holds a policy index")
		}
	} else if !e.policyIndex.valid() {
		return NewErrMetadataInconsistency(0, "tracked entry is missing its policy index")
	}
	if e.wheelLevel > 4 {
		return NewErrMetadataInconsistency(0, "wheel level out of range")
	}
	if e.expire > 0 && !e.wheelIndex.valid() {
		return NewErrMetadataInconsistency(0, "expiring entry is missing its wheel index")
	}
	return nil
}
