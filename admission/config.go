// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/votegate/models"
)

// DefaultMaxVotesPerNetwork is the network quota at process start
const DefaultMaxVotesPerNetwork = 3

var ErrInvalidLimit = errors.New("maxVotesPerNetwork must be at least 1")

// SystemConfig holds the administrator-controlled admission settings. It
// is safe for concurrent use; the controller reads a consistent snapshot
// once per vote attempt.
type SystemConfig struct {
	mu                 sync.RWMutex
	isOpen             bool
	maxVotesPerNetwork int
}

// NewSystemConfig returns a config with the given initial state. A limit
// below 1 is replaced with DefaultMaxVotesPerNetwork.
func NewSystemConfig(isOpen bool, maxVotesPerNetwork int) *SystemConfig {
	if maxVotesPerNetwork < 1 {
		maxVotesPerNetwork = DefaultMaxVotesPerNetwork
	}
	return &SystemConfig{isOpen: isOpen, maxVotesPerNetwork: maxVotesPerNetwork}
}

// Snapshot returns the current settings
func (c *SystemConfig) Snapshot() models.SystemStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.SystemStatus{IsOpen: c.isOpen, MaxVotesPerNetwork: c.maxVotesPerNetwork}
}

// Update applies the non-nil fields atomically. Nothing changes if the
// limit is invalid.
func (c *SystemConfig) Update(isOpen *bool, maxVotesPerNetwork *int) (models.SystemStatus, error) {
	if maxVotesPerNetwork != nil && *maxVotesPerNetwork < 1 {
		return c.Snapshot(), fmt.Errorf("%w: got %d", ErrInvalidLimit, *maxVotesPerNetwork)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if isOpen != nil && *isOpen != c.isOpen {
		c.isOpen = *isOpen
		slog.Info("voting status changed", "is_open", c.isOpen)
	}
	if maxVotesPerNetwork != nil && *maxVotesPerNetwork != c.maxVotesPerNetwork {
		c.maxVotesPerNetwork = *maxVotesPerNetwork
		slog.Info("max votes per network changed", "max_votes_per_network", c.maxVotesPerNetwork)
	}

	return models.SystemStatus{IsOpen: c.isOpen, MaxVotesPerNetwork: c.maxVotesPerNetwork}, nil
}
