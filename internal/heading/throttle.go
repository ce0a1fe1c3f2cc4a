// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import "time"

// DefaultMinInterval caps accepted updates at roughly 30 per second.
const DefaultMinInterval = 33 * time.Millisecond

// Throttle accepts an event only if MinInterval has elapsed since the last
// accepted one. The first event is always accepted.
type Throttle struct {
	MinInterval time.Duration

	last     time.Time
	accepted bool
}

// NewThrottle returns a throttle with the given minimum gap. A non-positive
// interval selects DefaultMinInterval.
func NewThrottle(minInterval time.Duration) *Throttle {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Throttle{MinInterval: minInterval}
}

// Allow reports whether an event at now is accepted, recording it if so.
// Rejected events leave the throttle untouched.
func (t *Throttle) Allow(now time.Time) bool {
	if t.accepted && now.Sub(t.last) < t.MinInterval {
		return false
	}
	t.last = now
	t.accepted = true
	return true
}

// Last returns the timestamp of the last accepted event.
func (t *Throttle) Last() (time.Time, bool) {
	return t.last, t.accepted
}

// Reset makes the next event accepted unconditionally.
func (t *Throttle) Reset() {
	t.last = time.Time{}
	t.accepted = false
}
