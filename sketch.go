// sketch.go: blocked Count-Min Sketch with 4-bit counters
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import "math/bits"

const (
	// resetMask halves every packed 4-bit counter when applied after a
	// one-bit right shift of the word.
	resetMask = uint64(0x7777777777777777)

	// oneMask selects the low bit of every packed 4-bit counter.
	oneMask = uint64(0x1111111111111111)
)

// countMinSketch estimates per-key access frequency over a bounded sample
// window. Each 64-bit word packs sixteen 4-bit counters; a key maps to a
// block of 8 consecutive words and four counters inside it. Counters
// saturate at 15 and are periodically aged by halving.
type countMinSketch struct {
	blockMask  uint64
	table      []uint64
	additions  int
	sampleSize int
	logger     Logger
}

// newCountMinSketch creates a sketch sized for the given number of keys.
// The size is raised to at least 64 and rounded up to the next power of two.
func newCountMinSketch(size int, logger Logger) *countMinSketch {
	if logger == nil {
		logger = NoOpLogger{}
	}
	if size < 64 {
		logger.Debug("sketch size too small, adjusted", "requested", size, "adjusted", 64)
		size = 64
	}

	counterSize := nextPowerOf2(size)
	if counterSize > 1<<20 {
		logger.Warn("sketch counter size is very large, may cause memory issues", "counter_size", counterSize)
	}

	s := &countMinSketch{
		blockMask:  uint64(counterSize>>3) - 1,
		table:      make([]uint64, counterSize),
		sampleSize: counterSize * 10,
		logger:     logger,
	}

	logger.Debug("sketch created",
		"counter_size", counterSize,
		"block_mask", s.blockMask,
		"sample_size", s.sampleSize)

	return s
}

// nextPowerOf2 returns the next power of 2 greater than or equal to n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// indexOf selects the word and in-word counter for one of the four
// derivations of the rehashed key. Out-of-range results clamp to zero.
func (s *countMinSketch) indexOf(counterHash, block uint64, offset uint8) (int, uint) {
	if offset > 3 {
		s.logger.Warn("sketch offset out of range", "offset", offset)
		return 0, 0
	}

	h := counterHash >> (offset << 3)
	index := block + (h & 1) + uint64(offset)<<1

	if index >= uint64(len(s.table)) {
		s.logger.Warn("sketch index exceeds table length", "index", index, "table_len", len(s.table))
		index = 0
	}

	return int(index), uint((h >> 1) & 0xf)
}

// inc bumps one 4-bit counter unless it is saturated at 15.
func (s *countMinSketch) inc(index int, offset uint) bool {
	if index >= len(s.table) {
		s.logger.Error("sketch index out of bounds", "index", index, "table_len", len(s.table))
		return false
	}
	if offset > 15 {
		s.logger.Warn("sketch counter offset out of range", "offset", offset)
		return false
	}

	shift := offset << 2
	mask := uint64(0xF) << shift

	if s.table[index]&mask != mask {
		s.table[index] += 1 << shift
		return true
	}
	return false
}

// add records one access for the hashed key. When the number of effective
// additions reaches the sample size, all counters are aged.
func (s *countMinSketch) add(h uint64) {
	counterHash := rehash(h)
	block := (h & s.blockMask) * 8

	index0, offset0 := s.indexOf(counterHash, block, 0)
	index1, offset1 := s.indexOf(counterHash, block, 1)
	index2, offset2 := s.indexOf(counterHash, block, 2)
	index3, offset3 := s.indexOf(counterHash, block, 3)

	added := s.inc(index0, offset0)
	added = s.inc(index1, offset1) || added
	added = s.inc(index2, offset2) || added
	added = s.inc(index3, offset3) || added

	if added {
		s.additions++
		if s.additions >= s.sampleSize {
			s.reset()
		}
	}
}

// reset ages the sketch: every counter is halved and the addition count is
// reduced to track the surviving mass. Relative ordering is preserved.
func (s *countMinSketch) reset() {
	count := 0
	for i := range s.table {
		count += bits.OnesCount64(s.table[i] & oneMask)
		s.table[i] = (s.table[i] >> 1) & resetMask
	}

	s.additions -= count >> 2
	if s.additions < 0 {
		s.additions = 0
	}
	s.additions >>= 1

	s.logger.Debug("sketch aged", "additions", s.additions)
}

// count reads one of the four counters for the hashed key.
func (s *countMinSketch) count(counterHash, block uint64, offset uint8) int {
	index, off := s.indexOf(counterHash, block, offset)
	if index >= len(s.table) || off > 15 {
		return 0
	}
	return int((s.table[index] >> (off << 2)) & 0xF)
}

// estimate returns the frequency estimate for the hashed key: the minimum
// of its four counters.
func (s *countMinSketch) estimate(h uint64) int {
	counterHash := rehash(h)
	block := (h & s.blockMask) * 8

	count0 := s.count(counterHash, block, 0)
	count1 := s.count(counterHash, block, 1)
	count2 := s.count(counterHash, block, 2)
	count3 := s.count(counterHash, block, 3)

	return min(min(count0, count1), min(count2, count3))
}

// rehash decorrelates the counter selection from the block selection.
func rehash(h uint64) uint64 {
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}
