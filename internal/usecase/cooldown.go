package usecase

import "time"

// CooldownState is the in-memory view of the persisted symbol -> last-alert
// mapping for one run. It is loaded once at run start, mutated by the
// detectors, and written back once at run end. Not safe for concurrent use;
// runs are serialized by the scheduler.
type CooldownState struct {
	window time.Duration
	state  map[string]time.Time
}

// NewCooldownState wraps a loaded state map. A nil map is treated as empty.
func NewCooldownState(state map[string]time.Time, window time.Duration) *CooldownState {
	if state == nil {
		state = make(map[string]time.Time)
	}
	return &CooldownState{window: window, state: state}
}

// InCooldown reports whether a prior alert for symbol is younger than the
// window. Absent entries are never in cooldown.
func (c *CooldownState) InCooldown(symbol string, now time.Time) bool {
	last, ok := c.state[symbol]
	if !ok {
		return false
	}
	return now.Sub(last) < c.window
}

// Mark records an alert for symbol at now, overwriting any prior entry. A
// symbol marked by one detector cannot fire through another inside the window.
func (c *CooldownState) Mark(symbol string, now time.Time) {
	c.state[symbol] = now
}

// Map returns the underlying state for persistence.
func (c *CooldownState) Map() map[string]time.Time {
	return c.state
}
