// hotreload_test.go: tests for hot configuration parsing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import (
	"testing"
	"time"
)

func TestHotConfig_RequiresPath(t *testing.T) {
	engine := New(100)
	if _, err := NewHotConfig(engine, HotConfigOptions{}); err == nil {
		t.Error("expected error for missing config path")
	}
}

func TestHotConfig_ParseConfig(t *testing.T) {
	hc := &HotConfig{config: DefaultConfig()}

	t.Run("nested engine section", func(t *testing.T) {
		cfg := hc.parseConfig(map[string]interface{}{
			"engine": map[string]interface{}{
				"capacity":        float64(5000),
				"window_ratio":    0.05,
				"protected_ratio": 0.7,
			},
		})
		if cfg.Capacity != 5000 {
			t.Errorf("expected capacity 5000, got %d", cfg.Capacity)
		}
		if cfg.WindowRatio != 0.05 {
			t.Errorf("expected window ratio 0.05, got %f", cfg.WindowRatio)
		}
		if cfg.ProtectedRatio != 0.7 {
			t.Errorf("expected protected ratio 0.7, got %f", cfg.ProtectedRatio)
		}
	})

	t.Run("flat section", func(t *testing.T) {
		cfg := hc.parseConfig(map[string]interface{}{
			"capacity": 2500,
		})
		if cfg.Capacity != 2500 {
			t.Errorf("expected capacity 2500, got %d", cfg.Capacity)
		}
	})

	t.Run("invalid values keep defaults", func(t *testing.T) {
		cfg := hc.parseConfig(map[string]interface{}{
			"engine": map[string]interface{}{
				"capacity":     -10,
				"window_ratio": 1.8,
			},
		})
		if cfg.Capacity != DefaultCapacity {
			t.Errorf("expected default capacity, got %d", cfg.Capacity)
		}
		if cfg.WindowRatio != DefaultWindowRatio {
			t.Errorf("expected default window ratio, got %f", cfg.WindowRatio)
		}
	})

	t.Run("unrelated data keeps defaults", func(t *testing.T) {
		cfg := hc.parseConfig(map[string]interface{}{"something": "else"})
		if cfg.Capacity != DefaultCapacity {
			t.Errorf("expected default capacity, got %d", cfg.Capacity)
		}
	})
}

func TestHotConfig_PathCheckedBeforePollInterval(t *testing.T) {
	// The path is checked before the poll interval is normalized, so an
	// interval below the minimum does not mask a missing path.
	engine := New(100)
	if _, err := NewHotConfig(engine, HotConfigOptions{ConfigPath: "", PollInterval: time.Millisecond}); err == nil {
		t.Error("expected error, watcher must not start without a path")
	}
}
