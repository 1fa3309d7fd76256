// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock set to initial. Time moves only when
// Advance is called.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. Pending timers fire
// during Advance in deadline order, with ties broken by registration
// order. Callbacks run in the goroutine calling Advance, without the
// clock's lock held, so a callback may register new timers.
//
// FakeClock is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*fakeTimer
	nextSeq uint64
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	seq      uint64

	// Exactly one of channel and callback is set.
	channel  chan time.Time
	callback func()

	done bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock has advanced
// by d. If d <= 0 the channel is ready on return.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.addLocked(&fakeTimer{deadline: c.current.Add(d), channel: channel})
	return channel
}

// AfterFunc registers f to run once the clock has advanced by d. If
// d <= 0, f runs synchronously before AfterFunc returns and the
// returned Timer is already spent.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	c.mu.Lock()
	timer := &fakeTimer{deadline: c.current.Add(d), callback: f}
	c.addLocked(timer)
	c.mu.Unlock()

	return &Timer{stop: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if timer.done {
			return false
		}
		timer.done = true
		c.removeLocked(timer)
		return true
	}}
}

func (c *FakeClock) addLocked(timer *fakeTimer) {
	timer.seq = c.nextSeq
	c.nextSeq++
	c.pending = append(c.pending, timer)
	c.changed.Broadcast()
}

func (c *FakeClock) removeLocked(timer *fakeTimer) {
	for i, candidate := range c.pending {
		if candidate == timer {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			c.changed.Broadcast()
			return
		}
	}
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is at or before the new time. Timers registered by a
// callback fire in the same Advance if their deadline is also due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()

	for {
		timer := c.popDue()
		if timer == nil {
			return
		}
		if timer.callback != nil {
			timer.callback()
			continue
		}
		select {
		case timer.channel <- timer.deadline:
		default:
		}
	}
}

// popDue removes and returns the earliest due timer, or nil.
func (c *FakeClock) popDue() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.pending, func(i, j int) bool {
		if c.pending[i].deadline.Equal(c.pending[j].deadline) {
			return c.pending[i].seq < c.pending[j].seq
		}
		return c.pending[i].deadline.Before(c.pending[j].deadline)
	})
	if len(c.pending) == 0 || c.pending[0].deadline.After(c.current) {
		return nil
	}
	timer := c.pending[0]
	c.pending = c.pending[1:]
	timer.done = true
	c.changed.Broadcast()
	return timer
}

// WaitForTimers blocks until at least n timers are pending.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of timers that have been registered
// and neither fired nor been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
