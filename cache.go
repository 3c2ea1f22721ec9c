// cache.go: engine façade composing the policy, timer wheel and entry store
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

// SetRequest is one element of a Set batch. A TTL of -1 removes the key;
// any other value is taken as a TTL in nanoseconds by absolute magnitude,
// with 0 meaning no expiration.
type SetRequest struct {
	Key uint64
	TTL int64
}

// Cache is the engine façade: it tracks keys (never values) under a
// W-TinyLFU admission/eviction policy with TTL expiration.
//
// Cache is not safe for concurrent use. Callers sharing it across
// goroutines must serialise calls with a mutex.
type Cache struct {
	policy  *tinyLFU
	wheel   *timerWheel
	clock   *clock
	entries map[uint64]*entry

	capacity       int
	windowRatio    float64
	protectedRatio float64
	logger         Logger
	metrics        MetricsCollector
	provider       TimeProvider

	hits        uint64
	misses      uint64
	sets        uint64
	removes     uint64
	evictions   uint64
	expirations uint64
}

// New creates an engine tracking at most capacity keys, with default
// configuration.
func New(capacity int) *Cache {
	cfg := DefaultConfig()
	cfg.Capacity = capacity
	return NewWithConfig(cfg)
}

// NewWithConfig creates an engine from the given configuration. Malformed
// values are normalized, never rejected: a non-positive capacity and
// out-of-range ratios are replaced by their defaults, nil collaborators get
// no-op defaults.
func NewWithConfig(cfg Config) *Cache {
	if cfg.Capacity < 0 {
		cfg.Logger = ensureLogger(cfg.Logger)
		cfg.Logger.Warn("capacity is negative, using default", "capacity", cfg.Capacity)
		cfg.Capacity = 0
	}
	_ = cfg.Validate()

	clk := newClock(cfg.TimeProvider)
	return &Cache{
		policy:         newTinyLFU(cfg.Capacity, cfg.WindowRatio, cfg.ProtectedRatio, cfg.Logger),
		wheel:          newTimerWheel(clk, cfg.Logger),
		clock:          clk,
		entries:        make(map[uint64]*entry, cfg.Capacity),
		capacity:       cfg.Capacity,
		windowRatio:    cfg.WindowRatio,
		protectedRatio: cfg.ProtectedRatio,
		logger:         cfg.Logger,
		metrics:        cfg.MetricsCollector,
		provider:       cfg.TimeProvider,
	}
}

func ensureLogger(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}

// setEntry creates or refreshes one entry, schedules its expiration and
// lets the policy admit it. On eviction the victim is descheduled but left
// in the entries map; Set reaps it at the end of the batch.
func (c *Cache) setEntry(key uint64, ttl uint64) (uint64, bool) {
	if e := c.entries[key]; e != nil {
		e.expire = c.clock.expireNS(ttl)
		c.wheel.schedule(key, e)
		return 0, false
	}

	e := newEntry()
	e.expire = c.clock.expireNS(ttl)
	c.wheel.schedule(key, e)
	c.entries[key] = e

	evicted, ok, err := c.policy.set(key, c.entries)
	if err != nil {
		c.logger.Error("set: policy error", "key", key, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	if victim := c.entries[evicted]; victim != nil {
		c.wheel.deschedule(victim)
	}
	c.logger.Debug("evicted key to admit key", "evicted", evicted, "key", key)
	return evicted, true
}

// Set processes the batch in order. A TTL of -1 removes the key; other
// TTLs are applied by absolute magnitude. A key already evicted within
// this batch is not re-admitted. Returns the keys evicted by the batch.
func (c *Cache) Set(batch []SetRequest) []uint64 {
	start := c.provider.Now()
	evicted := make(map[uint64]struct{})

	for _, req := range batch {
		if req.TTL == -1 {
			c.removeInternal(req.Key)
			continue
		}
		if _, seen := evicted[req.Key]; seen {
			continue
		}
		ttl := uint64(req.TTL)
		if req.TTL < 0 {
			ttl = -ttl
		}
		if key, ok := c.setEntry(req.Key, ttl); ok {
			evicted[key] = struct{}{}
		}
		c.sets++
	}

	// Evicted entries already left the policy lists and the wheel; drop
	// the ones still present from the entries map and report them. Keys
	// removed later in the batch (TTL -1) are not reported.
	result := make([]uint64, 0, len(evicted))
	for key := range evicted {
		if _, ok := c.entries[key]; !ok {
			continue
		}
		delete(c.entries, key)
		result = append(result, key)
		c.evictions++
		c.metrics.RecordEviction()
	}

	c.metrics.RecordSet(c.provider.Now() - start)

	if len(result) > 0 {
		c.logger.Debug("set batch complete", "evicted", len(result), "size", len(c.entries))
	}
	return result
}

// Access marks the keys as accessed, updating the frequency sketch and the
// region lists. Unknown keys only feed the sketch.
func (c *Cache) Access(keys []uint64) {
	start := c.provider.Now()
	for _, key := range keys {
		e, ok := c.entries[key]
		hit := ok && e.region != regionNone
		if hit {
			c.hits++
		} else {
			c.misses++
		}
		if err := c.policy.access(key, c.clock, c.entries); err != nil {
			c.logger.Error("access: policy error", "key", key, "error", err)
		}
		c.metrics.RecordAccess(c.provider.Now()-start, hit)
	}
}

// Advance processes TTL expirations up to the current time and returns the
// reaped keys.
func (c *Cache) Advance() []uint64 {
	expired := c.wheel.advance(c.clock.nowNS(), c.entries)

	for _, key := range expired {
		e, ok := c.entries[key]
		if !ok {
			continue
		}
		if err := c.policy.remove(e); err != nil {
			c.logger.Error("advance: policy error", "key", key, "error", err)
		}
		delete(c.entries, key)
		c.expirations++
		c.metrics.RecordExpiration()
	}

	if len(expired) > 0 {
		c.logger.Debug("advance complete", "expired", len(expired))
	}
	return expired
}

// Remove deletes the key from the engine. Returns the key and true if it
// was tracked.
func (c *Cache) Remove(key uint64) (uint64, bool) {
	start := c.provider.Now()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if err := c.policy.remove(e); err != nil {
		c.logger.Error("remove: policy error", "key", key, "error", err)
	}
	c.wheel.deschedule(e)
	delete(c.entries, key)
	c.removes++
	c.metrics.RecordRemove(c.provider.Now() - start)
	return key, true
}

func (c *Cache) removeInternal(key uint64) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	if err := c.policy.remove(e); err != nil {
		c.logger.Warn("failed to remove key from policy", "key", key, "error", err)
	}
	c.wheel.deschedule(e)
	delete(c.entries, key)
	c.logger.Debug("removed key", "key", key)
}

// Clear drops every tracked key. The policy and its sketch start fresh;
// the clock keeps running.
func (c *Cache) Clear() {
	c.wheel.clear()
	c.entries = make(map[uint64]*entry, c.capacity)
	c.policy = newTinyLFU(c.capacity, c.windowRatio, c.protectedRatio, c.logger)
	c.logger.Debug("engine cleared")
}

// Len returns the number of tracked keys.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Capacity returns the maximum number of tracked keys.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Keys returns all tracked keys in unspecified order.
func (c *Cache) Keys() []uint64 {
	keys := make([]uint64, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// DebugInfo returns the per-region breakdown of the policy state.
func (c *Cache) DebugInfo() DebugInfo {
	return c.policy.debugInfo()
}

// Stats returns engine statistics.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:        c.hits,
		Misses:      c.misses,
		Sets:        c.sets,
		Removes:     c.removes,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.entries),
		Capacity:    c.capacity,
	}
}

// Spread applies the MurmurHash3 64-bit finalizer to a host hash value,
// defending against weakly-distributed hashes and sign-bit bias. The input
// bit pattern is reinterpreted as unsigned.
func Spread(h int64) uint64 {
	z := uint64(h)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
