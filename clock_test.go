// clock_test.go: unit tests for the engine clock
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import (
	"math"
	"testing"
	"time"
)

// manualTimeProvider is a settable time source for tests.
type manualTimeProvider struct {
	now int64
}

func (p *manualTimeProvider) Now() int64 {
	return p.now
}

func (p *manualTimeProvider) advance(d time.Duration) {
	p.now += int64(d)
}

func TestClock_StartsNearZero(t *testing.T) {
	provider := &manualTimeProvider{now: 123456789}
	clk := newClock(provider)

	if got := clk.nowNS(); got != 0 {
		t.Errorf("expected 0 at creation, got %d", got)
	}

	provider.advance(time.Second)
	if got := clk.nowNS(); got != uint64(time.Second) {
		t.Errorf("expected 1s elapsed, got %d", got)
	}
}

func TestClock_BackwardsProviderClamps(t *testing.T) {
	provider := &manualTimeProvider{now: 1000}
	clk := newClock(provider)

	provider.now = 500
	if got := clk.nowNS(); got != 0 {
		t.Errorf("expected clamp to 0 on backwards time, got %d", got)
	}
}

func TestClock_ExpireNS(t *testing.T) {
	provider := &manualTimeProvider{}
	clk := newClock(provider)
	provider.advance(10 * time.Second)

	t.Run("zero ttl never expires", func(t *testing.T) {
		if got := clk.expireNS(0); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("ttl is added to now", func(t *testing.T) {
		want := uint64(10*time.Second) + uint64(time.Minute)
		if got := clk.expireNS(uint64(time.Minute)); got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	})

	t.Run("overflow saturates", func(t *testing.T) {
		if got := clk.expireNS(math.MaxUint64 - 5); got != math.MaxUint64 {
			t.Errorf("expected saturation at MaxUint64, got %d", got)
		}
	})
}

func TestSystemTimeProvider(t *testing.T) {
	provider := &systemTimeProvider{}
	first := provider.Now()
	if first <= 0 {
		t.Errorf("expected positive nanoseconds, got %d", first)
	}
}
