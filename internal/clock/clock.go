// Package clock abstracts the source of the current time so that expiry
// logic (access tokens, SRP login sessions, retention buckets) can be
// exercised deterministically in tests. Production code uses System;
// tests freeze and advance a FrozenClock.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current UTC instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by the wall clock, normalized to UTC.
func System() Clock {
	return systemClock{}
}

// FrozenClock is a Clock whose time only moves when explicitly advanced.
// Safe for concurrent use.
type FrozenClock struct {
	mu  sync.Mutex
	now time.Time
}

// Frozen returns a FrozenClock pinned to t (converted to UTC).
func Frozen(t time.Time) *FrozenClock {
	return &FrozenClock{now: t.UTC()}
}

// Now returns the frozen instant.
func (c *FrozenClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the frozen instant forward by d and returns the new value.
func (c *FrozenClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set pins the frozen instant to t (converted to UTC).
func (c *FrozenClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
