// tlfu.go: W-TinyLFU admission/eviction policy with adaptive window sizing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

const (
	// admitHashDOSThreshold is the frequency above which a losing candidate
	// may still be admitted through the deterministic tiebreak. Protects
	// against hash-DoS admission loops without relying on randomness.
	admitHashDOSThreshold = 6

	hillClimberStepDecayRate = float32(0.98)
	hillClimberStepPercent   = float32(0.0625)
)

// Queue tags for the eviction sweep pointers.
const (
	queueProbation uint8 = iota
	queueProtected
	queueWindow
)

// tinyLFU coordinates admission and eviction across the window LRU and the
// main SLRU, consulting the frequency sketch, and resizes the window against
// the protected region by hill climbing on the sampled hit ratio.
type tinyLFU struct {
	size     int
	capacity int
	window   *lruRegion
	main     *slruRegion
	sketch   *countMinSketch

	hitInSample    int
	missesInSample int
	hr             float32
	step           float32
	amount         int

	logger Logger
}

// newTinyLFU creates a policy for the given capacity. Zero capacity is
// floored to 1 with a warning.
func newTinyLFU(capacity int, windowRatio, protectedRatio float64, logger Logger) *tinyLFU {
	if logger == nil {
		logger = NoOpLogger{}
	}
	if capacity <= 0 {
		logger.Warn("policy capacity is 0, using minimum capacity of 1")
		capacity = 1
	}

	windowCap := int(float64(capacity) * windowRatio)
	if windowCap == 0 {
		windowCap = 1
	}
	mainCap := capacity - windowCap

	logger.Debug("policy created",
		"capacity", capacity,
		"window_cap", windowCap,
		"main_cap", mainCap)

	return &tinyLFU{
		capacity: capacity,
		window:   newLRURegion(windowCap),
		main:     newSLRURegion(mainCap, protectedRatio, logger),
		sketch:   newCountMinSketch(capacity, logger),
		step:     -float32(capacity) * hillClimberStepPercent,
		logger:   logger,
	}
}

// set admits a new key into the window, then runs the eviction protocol.
// Returns the most recently evicted key, if any. A key whose entry is
// already region-tagged is left alone; freshness is the timer wheel's job.
func (t *tinyLFU) set(key uint64, entries map[uint64]*entry) (uint64, bool, error) {
	if key == 0 {
		t.logger.Warn("policy set: key is 0, treating like any other key")
	}

	if t.hitInSample+t.missesInSample > t.sketch.sampleSize {
		t.climb()
		if err := t.resizeWindow(entries); err != nil {
			return 0, false, err
		}
	}

	if e := entries[key]; e != nil && e.region == regionNone {
		t.missesInSample++
		t.window.insert(key, e)
		t.size++
		t.sketch.add(key)
	}

	t.demoteFromProtected(entries)
	return t.evictEntries(entries)
}

// access records a hit, updates the sketch and touches or promotes the
// entry. An entry past its expiration is left untouched; advance reaps it.
func (t *tinyLFU) access(key uint64, clk *clock, entries map[uint64]*entry) error {
	if t.hitInSample+t.missesInSample > t.sketch.sampleSize {
		t.climb()
		if err := t.resizeWindow(entries); err != nil {
			return err
		}
	}
	t.sketch.add(key)

	e := entries[key]
	if e == nil {
		return nil
	}
	t.hitInSample++
	if e.expired(clk.nowNS()) {
		return nil
	}

	if !e.policyIndex.valid() {
		return NewErrPolicyInconsistency(key, "access: missing policy index")
	}
	switch e.region {
	case regionWindow:
		t.window.access(e.policyIndex)
		return nil
	case regionProbation, regionProtected:
		return t.main.access(key, entries)
	default:
		return NewErrPolicyInconsistency(key, "access: unexpected region tag")
	}
}

func (t *tinyLFU) len() int {
	return t.size
}

// remove takes the entry out of its region list. Untracked entries are a
// no-op; an unknown region tag is a detected bug.
func (t *tinyLFU) remove(e *entry) error {
	switch e.region {
	case regionNone:
		return nil
	case regionWindow:
		if err := t.window.remove(e); err != nil {
			return err
		}
		t.size--
		return nil
	case regionProbation, regionProtected:
		if err := t.main.remove(e); err != nil {
			return err
		}
		t.size--
		return nil
	default:
		return NewErrPolicyInconsistency(0, "remove: unexpected region tag")
	}
}

// demoteFromProtected pops protected tails into the probation front until
// the protected list fits its capacity again.
func (t *tinyLFU) demoteFromProtected(entries map[uint64]*entry) {
	for t.main.protected.len() > t.main.protected.capacity {
		key, ok := t.main.protected.popTail()
		if !ok {
			t.logger.Warn("demote: failed to pop protected tail, breaking")
			break
		}
		e := entries[key]
		if e == nil {
			t.logger.Warn("demote: entry missing from entries map, breaking", "key", key)
			break
		}
		t.main.insert(key, e)
	}
}

// increaseWindow moves up to amount keys from the main tails into the
// window front. Returns the residual that could not be moved.
func (t *tinyLFU) increaseWindow(amount int, entries map[uint64]*entry) int {
	for amount > 0 {
		key, ok := t.main.probation.tailValue()
		if !ok {
			key, ok = t.main.protected.tailValue()
		}
		if !ok {
			break
		}
		amount--
		e := entries[key]
		if e == nil {
			continue
		}
		if err := t.main.remove(e); err != nil {
			// Continue despite the error to avoid deadlocking the resize.
			t.logger.Warn("increase window: error removing entry from main", "key", key, "error", err)
			continue
		}
		t.window.insert(key, e)
	}
	return amount
}

// decreaseWindow moves up to amount keys from the window tail into the
// probation front. Returns the residual that could not be moved.
func (t *tinyLFU) decreaseWindow(amount int, entries map[uint64]*entry) int {
	for amount > 0 {
		key, ok := t.window.list.tailValue()
		if !ok {
			break
		}
		amount--
		e := entries[key]
		if e == nil {
			continue
		}
		if err := t.window.remove(e); err != nil {
			t.logger.Warn("decrease window: error removing entry from window", "key", key, "error", err)
			continue
		}
		t.main.insert(key, e)
	}
	return amount
}

// resizeWindow shifts amount slots between the protected region and the
// window, demotes overflow, migrates keys, and reconciles both capacities
// with whatever residual could not be applied.
func (t *tinyLFU) resizeWindow(entries map[uint64]*entry) error {
	newWindowCap := t.window.list.capacity + t.amount
	if newWindowCap < 1 {
		newWindowCap = 1
	}
	newProtectedCap := t.main.protected.capacity - t.amount
	if newProtectedCap < 1 {
		newProtectedCap = 1
	}

	t.logger.Debug("resize window",
		"amount", t.amount,
		"new_window_cap", newWindowCap,
		"new_protected_cap", newProtectedCap)

	t.window.list.capacity = newWindowCap
	t.main.protected.capacity = newProtectedCap
	// Demote first so the protected list fits before any migration.
	t.demoteFromProtected(entries)

	switch {
	case t.amount > 0:
		t.amount = t.increaseWindow(t.amount, entries)
	case t.amount < 0:
		t.amount = -t.decreaseWindow(-t.amount, entries)
	}

	t.window.list.capacity -= t.amount
	if t.window.list.capacity < 0 {
		t.window.list.capacity = 0
	}
	t.main.protected.capacity += t.amount
	if t.main.protected.capacity < 0 {
		t.main.protected.capacity = 0
	}
	return nil
}

// climb samples the hit ratio of the finished window and picks the next
// capacity shift: keep moving in the same direction while the ratio
// improves, reverse otherwise, with decaying steps and a full-size step
// whenever the ratio moved sharply.
func (t *tinyLFU) climb() {
	var delta float32
	if t.hitInSample+t.missesInSample == 0 {
		delta = 0
	} else {
		sampleHR := float32(t.hitInSample) / float32(t.hitInSample+t.missesInSample)
		delta = sampleHR - t.hr
		t.hr = sampleHR
	}
	t.hitInSample = 0
	t.missesInSample = 0

	var amount float32
	if delta >= 0 {
		amount = t.step
	} else {
		amount = -t.step
	}

	nextStep := amount * hillClimberStepDecayRate
	if abs32(delta) >= 0.05 {
		full := float32(t.size) * hillClimberStepPercent
		if amount >= 0 {
			nextStep = full
		} else {
			nextStep = -full
		}
	}
	t.step = nextStep
	t.amount = int(amount)

	// Growing the window can take at most what protected currently holds.
	if t.amount > 0 && t.amount > t.main.protected.len() {
		t.amount = t.main.protected.len()
	}

	// Shrinking the window must leave it at least one slot.
	if t.amount < 0 && -t.amount > t.window.list.capacity-1 {
		t.amount = -(t.window.list.capacity - 1)
	}
}

// evictFromWindow drains window overflow into the probation front and
// returns the first drained key as the eviction candidate.
func (t *tinyLFU) evictFromWindow(entries map[uint64]*entry) (uint64, bool) {
	var first uint64
	var firstOK bool
	for t.window.len() > t.window.list.capacity {
		key, ok := t.window.list.popTail()
		if !ok {
			break
		}
		if !firstOK {
			first, firstOK = key, true
		}
		if e := entries[key]; e != nil {
			t.main.insert(key, e)
		}
	}
	return first, firstOK
}

// evictFromMain runs the candidate-versus-victim sweep until the policy
// fits its capacity. The victim pointer walks probation, then protected,
// then the window; the candidate starts at the first key drained from the
// window (or the window tail) and walks toward its front. The sweep
// terminates when both pointers are absent after queue migration.
func (t *tinyLFU) evictFromMain(candidate uint64, candidateOK bool, entries map[uint64]*entry) (uint64, bool, error) {
	victimQueue := queueProbation
	candidateQueue := queueProbation
	victim, victimOK := t.main.probation.tailValue()

	var evicted uint64
	var evictedOK bool

	maxSteps := 3 * t.capacity
	if maxSteps < 3 {
		maxSteps = 3
	}
	steps := 0

	for t.size > t.capacity {
		steps++
		if steps > maxSteps {
			t.logger.Error("eviction sweep exceeded its step bound, state corruption suspected",
				"capacity", t.capacity, "size", t.size)
			break
		}

		if !candidateOK && candidateQueue == queueProbation {
			candidate, candidateOK = t.window.list.tailValue()
			candidateQueue = queueWindow
		}

		if !candidateOK && !victimOK {
			switch victimQueue {
			case queueProbation:
				victim, victimOK = t.main.protected.tailValue()
				victimQueue = queueProtected
				continue
			case queueProtected:
				victim, victimOK = t.window.list.tailValue()
				victimQueue = queueWindow
				continue
			default:
				// Every queue is exhausted; nothing left to evict.
				return evicted, evictedOK, nil
			}
		}

		if !victimOK {
			prev, prevOK := t.prevKey(candidate, candidateOK, entries)
			evictKey, doEvict := candidate, candidateOK
			candidate, candidateOK = prev, prevOK
			if doEvict {
				if err := t.evictKey(evictKey, entries); err != nil {
					return evicted, evictedOK, err
				}
				evicted, evictedOK = evictKey, true
			}
			continue
		}

		if !candidateOK {
			evictKey := victim
			victim, victimOK = t.prevKey(victim, victimOK, entries)
			if err := t.evictKey(evictKey, entries); err != nil {
				return evicted, evictedOK, err
			}
			evicted, evictedOK = evictKey, true
			continue
		}

		if victim == candidate {
			// Tie goes to the victim: the candidate is evicted.
			victim, victimOK = t.prevKey(victim, victimOK, entries)
			if err := t.evictKey(candidate, entries); err != nil {
				return evicted, evictedOK, err
			}
			evicted, evictedOK = candidate, true
			candidateOK = false
			continue
		}

		if t.admit(candidate, victim) {
			evictKey := victim
			victim, victimOK = t.prevKey(victim, victimOK, entries)
			if err := t.evictKey(evictKey, entries); err != nil {
				return evicted, evictedOK, err
			}
			evicted, evictedOK = evictKey, true
			candidate, candidateOK = t.prevKey(candidate, candidateOK, entries)
		} else {
			evictKey := candidate
			candidate, candidateOK = t.prevKey(candidate, candidateOK, entries)
			if err := t.evictKey(evictKey, entries); err != nil {
				return evicted, evictedOK, err
			}
			evicted, evictedOK = evictKey, true
		}
	}
	return evicted, evictedOK, nil
}

// evictKey removes the key's entry from its policy list.
func (t *tinyLFU) evictKey(key uint64, entries map[uint64]*entry) error {
	e := entries[key]
	if e == nil {
		return nil
	}
	return t.remove(e)
}

// prevKey returns the key one step toward the front of whichever list holds
// the given key.
func (t *tinyLFU) prevKey(key uint64, ok bool, entries map[uint64]*entry) (uint64, bool) {
	if !ok {
		return 0, false
	}
	e := entries[key]
	if e == nil || !e.policyIndex.valid() {
		return 0, false
	}
	var l *list[uint64]
	switch e.region {
	case regionWindow:
		l = t.window.list
	case regionProbation:
		l = t.main.probation
	case regionProtected:
		l = t.main.protected
	default:
		return 0, false
	}
	return l.prevOf(e.policyIndex)
}

// evictEntries runs the two-phase eviction protocol and returns the most
// recently evicted key.
func (t *tinyLFU) evictEntries(entries map[uint64]*entry) (uint64, bool, error) {
	first, firstOK := t.evictFromWindow(entries)
	return t.evictFromMain(first, firstOK, entries)
}

// admit decides whether the candidate displaces the victim, comparing
// sketch estimates with a deterministic tiebreak for popular candidates.
func (t *tinyLFU) admit(candidate, victim uint64) bool {
	victimFreq := t.sketch.estimate(victim)
	candidateFreq := t.sketch.estimate(candidate)

	if candidateFreq > victimFreq {
		return true
	}
	if candidateFreq > admitHashDOSThreshold {
		return (candidate+victim)&127 == 0
	}
	return false
}

// debugInfo reports the per-region lengths.
func (t *tinyLFU) debugInfo() DebugInfo {
	return DebugInfo{
		Len:          t.len(),
		WindowLen:    t.window.len(),
		ProbationLen: t.main.probation.len(),
		ProtectedLen: t.main.protected.len(),
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
