// filter.go: reset-on-full bloom filter doorkeeper
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import "math"

// BloomFilter is a bounded membership filter that resets itself once the
// configured number of insertions has been reached. Hosts can use it as a
// doorkeeper in front of the engine to keep one-hit wonders out of the
// frequency sketch.
type BloomFilter struct {
	insertions int
	bitsMask   uint64
	sliceCount int
	bits       []uint64
	additions  int
	logger     Logger
}

// NewBloomFilter creates a filter sized for the given insertion count and
// false-positive probability. Zero insertions floors to 1; fpp is clamped
// to [0.001, 0.999].
func NewBloomFilter(insertions int, fpp float64) *BloomFilter {
	return newBloomFilter(insertions, fpp, NoOpLogger{})
}

func newBloomFilter(insertions int, fpp float64, logger Logger) *BloomFilter {
	if insertions == 0 {
		insertions = 1
	}
	fpp = math.Max(0.001, math.Min(0.999, fpp))

	ln2 := math.Ln2
	factor := -math.Log(fpp) / (ln2 * ln2)
	bitCount := nextPowerOf2(int(float64(insertions) * factor))
	if bitCount == 0 {
		bitCount = 1
	}

	sliceCount := int(ln2 * float64(bitCount) / float64(insertions))
	if sliceCount < 1 {
		sliceCount = 1
	}

	logger.Debug("bloom filter created",
		"insertions", insertions,
		"fpp", fpp,
		"bits", bitCount,
		"slice_count", sliceCount)

	return &BloomFilter{
		insertions: insertions,
		bitsMask:   uint64(bitCount - 1),
		sliceCount: sliceCount,
		bits:       make([]uint64, (bitCount+63)/64),
		logger:     logger,
	}
}

// Put records the key, resetting the filter first if it has absorbed its
// configured number of insertions.
func (f *BloomFilter) Put(key uint64) {
	f.additions++
	if f.additions >= f.insertions {
		f.reset()
	}

	for i := 0; i < f.sliceCount; i++ {
		hash := key + uint64(i)*(key>>32)
		f.set(hash & f.bitsMask)
	}
}

// Contains reports whether the key was probably recorded since the last
// reset. False positives are possible; false negatives are not.
func (f *BloomFilter) Contains(key uint64) bool {
	if f.sliceCount == 0 {
		f.logger.Warn("bloom filter contains: slice count is 0, this indicates a configuration error")
		return false
	}

	for i := 0; i < f.sliceCount; i++ {
		hash := key + uint64(i)*(key>>32)
		if !f.get(hash & f.bitsMask) {
			return false
		}
	}
	return true
}

func (f *BloomFilter) get(bit uint64) bool {
	idx := bit >> 6
	if idx >= uint64(len(f.bits)) {
		f.logger.Warn("bloom filter get: bit out of bounds", "bit", bit)
		return false
	}
	return f.bits[idx]&(1<<(bit&63)) != 0
}

func (f *BloomFilter) set(bit uint64) {
	idx := bit >> 6
	if idx >= uint64(len(f.bits)) {
		f.logger.Warn("bloom filter set: bit out of bounds", "bit", bit)
		return
	}
	f.bits[idx] |= 1 << (bit & 63)
}

func (f *BloomFilter) reset() {
	for i := range f.bits {
		f.bits[i] = 0
	}
	f.additions = 0
	f.logger.Debug("bloom filter reset: cleared all bits")
}
