// Package testutils provides deterministic generators and utility functions for dbassist testing.
// These utilities ensure consistent test output while maintaining production format compatibility.
package testutils

import (
	"sync"
	"time"
)

// BaseTime is the fixed starting instant shared by deterministic tests.
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// IncrementingClock returns a clock that starts at start and advances by
// step on every call. Message identifiers derived from it are stable across
// test runs.
func IncrementingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	var calls int64
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := start.Add(time.Duration(calls) * step)
		calls++
		return t
	}
}

// FrozenClock returns a clock that always reports the same instant. Useful
// for exercising the duplicate-identifier guard.
func FrozenClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
