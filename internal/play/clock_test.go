package play

import (
	"sort"
	"sync"
	"time"
)

// fakeClock fires callbacks synchronously from Advance.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending map[int]*fakeTimer
}

type fakeTimer struct {
	clock *fakeClock
	id    int
	at    time.Duration
	fn    func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{pending: make(map[int]*fakeTimer)}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &fakeTimer{clock: c, id: c.nextID, at: c.now + d, fn: f}
	c.pending[t.id] = t
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	_, ok := t.clock.pending[t.id]
	delete(t.clock.pending, t.id)
	return ok
}

// Advance moves time forward, firing due timers in order. Callbacks run
// without the clock lock held so they may schedule new timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		due := make([]*fakeTimer, 0, len(c.pending))
		for _, t := range c.pending {
			if t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].id < due[j].id
		})
		next := due[0]
		delete(c.pending, next.id)
		c.now = next.at
		c.mu.Unlock()

		next.fn()
	}
}

// Pending reports how many timers are scheduled.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// scheduled returns the timers currently pending.
func (c *fakeClock) scheduled() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*fakeTimer, 0, len(c.pending))
	for _, t := range c.pending {
		out = append(out, t)
	}
	return out
}
