// timerwheel.go: hierarchical timer wheel for TTL expiration scheduling
//
// A timer wheel schedules events at specific times with O(1) insertion and
// removal. This implementation uses 5 levels with exponentially increasing
// time ranges:
//
//	level 0: ~1.07s  (64 buckets)
//	level 1: ~1.14m  (64 buckets)
//	level 2: ~1.22h  (32 buckets)
//	level 3: ~1.63d  (4 buckets)
//	level 4: ~6.5d+  (1 bucket)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import (
	"math/bits"
	"time"
)

type timerWheel struct {
	buckets []int
	spans   []uint64
	shift   []uint
	wheel   [][]*list[uint64]
	clock   *clock
	nanos   uint64
	logger  Logger
}

func newTimerWheel(clk *clock, logger Logger) *timerWheel {
	if logger == nil {
		logger = NoOpLogger{}
	}
	buckets := []int{64, 64, 32, 4, 1}

	day := uint64(24 * time.Hour / time.Nanosecond)
	spans := []uint64{
		nextPowerOf2U64(uint64(time.Second / time.Nanosecond)), // ~1.07s
		nextPowerOf2U64(uint64(time.Minute / time.Nanosecond)), // ~1.14m
		nextPowerOf2U64(uint64(time.Hour / time.Nanosecond)),   // ~1.22h
		nextPowerOf2U64(day),                                   // ~1.63d
		nextPowerOf2U64(day) * 4,                               // ~6.5d
		nextPowerOf2U64(day) * 4,                               // ~6.5d
	}

	shift := make([]uint, len(spans))
	for i, s := range spans {
		shift[i] = uint(bits.TrailingZeros64(s))
	}

	wheel := make([][]*list[uint64], len(buckets))
	for i, count := range buckets {
		wheel[i] = make([]*list[uint64], count)
		for j := range wheel[i] {
			wheel[i][j] = newList[uint64](8)
		}
	}

	logger.Debug("timer wheel initialized", "levels", len(buckets))

	return &timerWheel{
		buckets: buckets,
		spans:   spans,
		shift:   shift,
		wheel:   wheel,
		clock:   clk,
		nanos:   clk.nowNS(),
		logger:  logger,
	}
}

// nextPowerOf2U64 returns the next power of 2 greater than or equal to n.
func nextPowerOf2U64(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << uint(64-bits.LeadingZeros64(n-1))
}

// findIndex returns the wheel level and slot for an expiration time,
// relative to the wheel's last-advanced position.
func (w *timerWheel) findIndex(expire uint64) (int, int) {
	var duration uint64
	if expire > w.nanos {
		duration = expire - w.nanos
	}
	for i := 0; i < 5; i++ {
		if duration < w.spans[i+1] {
			ticks := expire >> w.shift[i]
			return i, int(ticks & uint64(w.buckets[i]-1))
		}
	}
	return 4, 0
}

// schedule places the key in the bucket matching the entry's expiration,
// first removing it from any previous position. Entries without an
// expiration are not scheduled.
func (w *timerWheel) schedule(key uint64, e *entry) {
	w.deschedule(e)
	if e.expire == 0 {
		return
	}

	level, slot := w.findIndex(e.expire)
	if level >= len(w.wheel) {
		w.logger.Error("wheel schedule: level out of bounds", "key", key, "level", level)
		return
	}
	if slot >= len(w.wheel[level]) {
		w.logger.Error("wheel schedule: slot out of bounds", "key", key, "level", level, "slot", slot)
		return
	}

	e.wheelLevel = uint8(level)
	e.wheelSlot = uint8(slot)
	e.wheelIndex = w.wheel[level][slot].insertFront(key)
}

// deschedule removes the entry from its recorded bucket and clears its
// wheel position.
func (w *timerWheel) deschedule(e *entry) {
	level := int(e.wheelLevel)
	slot := int(e.wheelSlot)

	if level >= len(w.wheel) {
		w.logger.Warn("wheel deschedule: level out of bounds", "level", level)
	} else if slot >= len(w.wheel[level]) {
		w.logger.Warn("wheel deschedule: slot out of bounds", "level", level, "slot", slot)
	} else if e.wheelIndex.valid() {
		w.wheel[level][slot].remove(e.wheelIndex)
	}

	e.wheelIndex = noIndex
	e.wheelLevel = 0
	e.wheelSlot = 0
}

// advance moves the wheel to now and returns every key whose expiration
// elapsed. The caller also removes the returned keys from its entries map
// and the policy.
func (w *timerWheel) advance(now uint64, entries map[uint64]*entry) []uint64 {
	previous := w.nanos
	w.nanos = now

	var removedAll []uint64
	for i := 0; i < 5; i++ {
		prevTicks := previous >> w.shift[i]
		currentTicks := now >> w.shift[i]
		if currentTicks <= prevTicks {
			break
		}
		removedAll = append(removedAll, w.expire(i, prevTicks, currentTicks-prevTicks, entries)...)
	}
	return removedAll
}

// expire scans the level's affected buckets, descheduling elapsed entries
// and cascading the rest into finer buckets.
func (w *timerWheel) expire(level int, prevTicks, delta uint64, entries map[uint64]*entry) []uint64 {
	if level >= len(w.wheel) {
		w.logger.Error("wheel expire: level out of bounds", "level", level)
		return nil
	}

	mask := uint64(w.buckets[level] - 1)
	steps := uint64(w.buckets[level])
	if delta+1 < steps {
		steps = delta + 1
	}
	start := prevTicks & mask

	var removedAll []uint64
	for i := start; i < start+steps; i++ {
		bucket := w.wheel[level][i&mask]
		if bucket.len() == 0 {
			continue
		}

		var removed, modified []uint64
		for _, key := range bucket.values() {
			e := entries[key]
			if e == nil {
				continue
			}
			if e.expire <= w.nanos {
				removed = append(removed, key)
			} else {
				modified = append(modified, key)
			}
		}

		for _, key := range removed {
			if e := entries[key]; e != nil {
				w.deschedule(e)
			}
		}
		// Not actually elapsed: these sat in a coarse bucket and now
		// cascade into a finer level.
		for _, key := range modified {
			if e := entries[key]; e != nil {
				w.schedule(key, e)
			}
		}

		removedAll = append(removedAll, removed...)
	}
	return removedAll
}

// clear empties every bucket on every level.
func (w *timerWheel) clear() {
	for _, level := range w.wheel {
		for _, bucket := range level {
			bucket.clear()
		}
	}
	w.logger.Debug("timer wheel cleared")
}
