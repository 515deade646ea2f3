package feed

import (
	"errors"
	"fmt"
	"time"
)

// Source slots used by Config.Pattern.
const (
	SlotCollaborative = 0
	SlotPopular       = 1
	SlotInteractive   = 2

	numSources = 3
)

// Defaults for the feed blend.
const (
	DefaultCollaborativeLimit = 20
	DefaultPopularLimit       = 15
	DefaultInteractiveLimit   = 15
	DefaultWindow             = 7 * 24 * time.Hour
)

// DefaultPattern interleaves collaborative, popular and interactive candidates 4:3:3.
var DefaultPattern = []int{
	SlotCollaborative, SlotCollaborative, SlotCollaborative, SlotCollaborative,
	SlotPopular, SlotPopular, SlotPopular,
	SlotInteractive, SlotInteractive, SlotInteractive,
}

// Config holds the blend constants. Production uses DefaultConfig; tests swap
// in other ratios without touching the merge algorithm.
type Config struct {
	// Pattern lists the source slot consumed at each position of one merge cycle.
	Pattern []int

	CollaborativeLimit int
	PopularLimit       int
	InteractiveLimit   int

	// Window is how far back Popular and Interactive look for new videos.
	Window time.Duration

	// Concurrent fetches the three sources in parallel. Ordering of the result
	// does not depend on it.
	Concurrent bool
}

// DefaultConfig returns the production blend.
func DefaultConfig() Config {
	pattern := make([]int, len(DefaultPattern))
	copy(pattern, DefaultPattern)
	return Config{
		Pattern:            pattern,
		CollaborativeLimit: DefaultCollaborativeLimit,
		PopularLimit:       DefaultPopularLimit,
		InteractiveLimit:   DefaultInteractiveLimit,
		Window:             DefaultWindow,
		Concurrent:         true,
	}
}

// Validate checks that the pattern only references known sources and that caps are positive.
func (c Config) Validate() error {
	if len(c.Pattern) == 0 {
		return errors.New("pattern must not be empty")
	}
	for i, slot := range c.Pattern {
		if slot < 0 || slot >= numSources {
			return fmt.Errorf("pattern[%d]: unknown source slot %d", i, slot)
		}
	}
	if c.CollaborativeLimit <= 0 || c.PopularLimit <= 0 || c.InteractiveLimit <= 0 {
		return errors.New("source limits must be positive")
	}
	if c.Window <= 0 {
		return errors.New("window must be positive")
	}
	return nil
}
