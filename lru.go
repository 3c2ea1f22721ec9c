// lru.go: window LRU and segmented main region managers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

// lruRegion is the admission window: a single LRU list.
type lruRegion struct {
	list *list[uint64]
}

func newLRURegion(capacity int) *lruRegion {
	if capacity == 0 {
		capacity = 1
	}
	return &lruRegion{list: newList[uint64](capacity)}
}

// insert pushes the key to the window front and tags the entry.
func (r *lruRegion) insert(key uint64, e *entry) {
	e.policyIndex = r.list.insertFront(key)
	e.region = regionWindow
}

// access moves the key to the window front.
func (r *lruRegion) access(index listIndex) {
	r.list.touch(index)
}

func (r *lruRegion) len() int {
	return r.list.len()
}

// remove takes the entry out of the window and clears its handle.
func (r *lruRegion) remove(e *entry) error {
	if !e.policyIndex.valid() {
		return NewErrPolicyInconsistency(0, "window remove: missing policy index")
	}
	r.list.remove(e.policyIndex)
	e.policyIndex = noIndex
	e.region = regionNone
	return nil
}

// slruRegion is the main region: a probation list for newly admitted keys
// and a protected list for keys touched a second time.
type slruRegion struct {
	probation *list[uint64]
	protected *list[uint64]
	logger    Logger
}

func newSLRURegion(capacity int, protectedRatio float64, logger Logger) *slruRegion {
	if capacity == 0 {
		capacity = 1
	}
	protectedCap := int(float64(capacity) * protectedRatio)
	logger.Debug("slru created", "capacity", capacity, "protected_cap", protectedCap)
	return &slruRegion{
		probation: newList[uint64](capacity),
		protected: newList[uint64](protectedCap),
		logger:    logger,
	}
}

// insert pushes the key to the probation front and tags the entry.
func (r *slruRegion) insert(key uint64, e *entry) {
	e.policyIndex = r.probation.insertFront(key)
	e.region = regionProbation
}

// access promotes a probation entry to the protected front, or refreshes a
// protected entry in place. An unknown region tag or a missing handle is a
// detected bug.
func (r *slruRegion) access(key uint64, entries map[uint64]*entry) error {
	e := entries[key]
	if e == nil {
		// Entry not found is not an error in this context.
		return nil
	}

	switch e.region {
	case regionProbation:
		if !e.policyIndex.valid() {
			return NewErrPolicyInconsistency(key, "slru access: missing policy index in probation")
		}
		r.probation.remove(e.policyIndex)
		e.policyIndex = r.protected.insertFront(key)
		e.region = regionProtected
		return nil
	case regionProtected:
		if !e.policyIndex.valid() {
			return NewErrPolicyInconsistency(key, "slru access: missing policy index in protected")
		}
		r.protected.touch(e.policyIndex)
		return nil
	default:
		return NewErrPolicyInconsistency(key, "slru access: unexpected region tag")
	}
}

// remove takes the entry out of whichever main list holds it.
func (r *slruRegion) remove(e *entry) error {
	if !e.policyIndex.valid() {
		return NewErrPolicyInconsistency(0, "slru remove: missing policy index")
	}
	switch e.region {
	case regionProbation:
		r.probation.remove(e.policyIndex)
	case regionProtected:
		r.protected.remove(e.policyIndex)
	default:
		return NewErrPolicyInconsistency(0, "slru remove: unexpected region tag")
	}
	e.policyIndex = noIndex
	e.region = regionNone
	return nil
}

func (r *slruRegion) len() int {
	return r.probation.len() + r.protected.len()
}
