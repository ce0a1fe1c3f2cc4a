// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import (
	"math/rand/v2"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestThrottleAllow(t *testing.T) {
	base := time.Unix(0, 0)
	th := NewThrottle(0)
	test.That(t, th.MinInterval, test.ShouldEqual, DefaultMinInterval)

	test.That(t, th.Allow(base), test.ShouldBeTrue)
	test.That(t, th.Allow(base.Add(10*time.Millisecond)), test.ShouldBeFalse)
	test.That(t, th.Allow(base.Add(32*time.Millisecond)), test.ShouldBeFalse)
	test.That(t, th.Allow(base.Add(33*time.Millisecond)), test.ShouldBeTrue)

	// a rejected event does not move the reference point
	test.That(t, th.Allow(base.Add(60*time.Millisecond)), test.ShouldBeFalse)
	test.That(t, th.Allow(base.Add(66*time.Millisecond)), test.ShouldBeTrue)

	last, ok := th.Last()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, last.Equal(base.Add(66*time.Millisecond)), test.ShouldBeTrue)

	th.Reset()
	test.That(t, th.Allow(base.Add(67*time.Millisecond)), test.ShouldBeTrue)
}

func TestThrottleFirstEventAlwaysAccepted(t *testing.T) {
	th := NewThrottle(time.Second)
	test.That(t, th.Allow(time.Time{}), test.ShouldBeTrue)
	test.That(t, th.Allow(time.Time{}), test.ShouldBeFalse)
}

func TestThrottleWindowBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	th := NewThrottle(DefaultMinInterval)

	now := time.Unix(100, 0)
	var accepted []time.Time
	for i := 0; i < 5000; i++ {
		now = now.Add(time.Duration(rng.IntN(20_000)) * time.Microsecond)
		if th.Allow(now) {
			accepted = append(accepted, now)
		}
	}
	test.That(t, len(accepted), test.ShouldBeGreaterThan, 100)

	for i := 1; i < len(accepted); i++ {
		test.That(t, accepted[i].Sub(accepted[i-1]) >= DefaultMinInterval, test.ShouldBeTrue)
	}

	// Three gaps of 33ms span 99ms, so no window shorter than that holds a
	// fourth accepted event.
	window := 3 * DefaultMinInterval
	for i := range accepted {
		n := 0
		for j := i; j < len(accepted) && accepted[j].Sub(accepted[i]) < window; j++ {
			n++
		}
		test.That(t, n, test.ShouldBeLessThanOrEqualTo, 3)
	}
}
