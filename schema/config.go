package schema

import (
	"fmt"
	"time"
)

// ServiceConfig controls core service behavior.
type ServiceConfig struct {
	// DebounceInterval is the quiet period before detection runs.
	DebounceInterval time.Duration
}

// DefaultDebounceInterval is the quiet period used when none is set.
const DefaultDebounceInterval = 300 * time.Millisecond

// NormalizeServiceConfig fills defaults and validates values.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.DebounceInterval < 0 {
		return ServiceConfig{}, fmt.Errorf("%w: debounce interval must not be negative", ErrInvalidRequest)
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	return cfg, nil
}
