// Package tabs implements exclusive selection over a fixed set of named slots.
package tabs

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTab is returned when selecting a name that is not a slot
var ErrUnknownTab = errors.New("unknown tab")

// Controller tracks which one of its slots is active
type Controller struct {
	mu     sync.RWMutex
	names  []string
	active string
}

// New creates a controller over names with active selected. An empty
// active selects the first slot.
func New(names []string, active string) (*Controller, error) {
	if len(names) == 0 {
		return nil, errors.New("tabs: at least one slot is required")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, fmt.Errorf("tabs: duplicate slot %q", n)
		}
		seen[n] = true
	}

	c := &Controller{names: append([]string(nil), names...)}
	if active == "" {
		active = names[0]
	}
	if err := c.Select(active); err != nil {
		return nil, err
	}
	return c, nil
}

// Select makes name the only active slot. Unknown names leave the
// current selection unchanged.
func (c *Controller) Select(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	c.active = name
	return nil
}

// Active returns the active slot
func (c *Controller) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// IsActive reports whether name is the active slot
func (c *Controller) IsActive(name string) bool {
	return c.Active() == name
}

// Names returns the slots in order
func (c *Controller) Names() []string {
	return append([]string(nil), c.names...)
}

// Index returns the position of the active slot
func (c *Controller) Index() int {
	active := c.Active()
	for i, n := range c.names {
		if n == active {
			return i
		}
	}
	return 0
}

func (c *Controller) has(name string) bool {
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}
