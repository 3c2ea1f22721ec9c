// hotreload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package lethe

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig provides dynamic configuration reload capabilities using Argus.
// It watches a configuration file and surfaces updated engine settings when
// changes are detected.
//
// Capacity and ratio changes require rebuilding the engine; the watcher
// hands both the old and the new configuration to OnReload so the host can
// decide when to swap.
type HotConfig struct {
	engine  *Cache
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations.
	// If nil, NoOpLogger is used.
	Logger Logger
}

// NewHotConfig creates a new hot-reloadable configuration for an engine.
// It starts watching the configuration file immediately.
//
// Example configuration file (YAML):
//
//	engine:
//	  capacity: 10000
//	  window_ratio: 0.01
//	  protected_ratio: 0.8
//
// Supported configuration keys:
//   - engine.capacity (int): Maximum number of tracked keys
//   - engine.window_ratio (float): Admission window share (0.0-1.0)
//   - engine.protected_ratio (float): Protected segment share (0.0-1.0)
func NewHotConfig(engine *Cache, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	hc := &HotConfig{
		engine:   engine,
		OnReload: opts.OnReload,
		config:   DefaultConfig(),
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil // Already started
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData)
	hc.config = newConfig
	hc.mu.Unlock()

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseFloatInRange extracts a float64 within the specified range (min, max).
func parseFloatInRange(value interface{}, min, max float64) (float64, bool) {
	if v, ok := value.(float64); ok {
		if v > min && v < max {
			return v, true
		}
	}
	return 0, false
}

// parseConfig extracts engine configuration from Argus config data.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := DefaultConfig()

	// Extract engine section - Argus might nest it or provide it directly
	engineSection, ok := data["engine"].(map[string]interface{})
	if !ok {
		if _, hasCapacity := data["capacity"]; hasCapacity {
			engineSection = data
		} else {
			return config
		}
	}

	if capacity, ok := parsePositiveInt(engineSection["capacity"]); ok {
		config.Capacity = capacity
	}

	if ratio, ok := parseFloatInRange(engineSection["window_ratio"], 0, 1); ok {
		config.WindowRatio = ratio
	}

	if ratio, ok := parseFloatInRange(engineSection["protected_ratio"], 0, 1); ok {
		config.ProtectedRatio = ratio
	}

	return config
}
