// Package debounce runs the last of a burst of calls once the burst goes quiet.
package debounce

import (
	"sync"
	"time"
)

const DefaultDelay = 300 * time.Millisecond

// Debouncer keeps at most one pending call per key. Triggering a key again
// before its delay elapses replaces the pending call and restarts the timer,
// so the last write before quiescence wins.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
}

type entry struct {
	timer *time.Timer
	fn    func()
	gen   uint64
}

func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, pending: map[string]*entry{}}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn for key after the delay, cancelling any pending call for key.
func (d *Debouncer) Trigger(key string, fn func()) {
	if d == nil || fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	e, ok := d.pending[key]
	if !ok {
		e = &entry{}
		d.pending[key] = e
	} else if e.timer != nil {
		e.timer.Stop()
	}
	e.fn = fn
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, gen) })
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok || e.gen != gen {
		// Superseded or flushed while the timer was in flight.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	fn := e.fn
	d.mu.Unlock()
	fn()
}

// Flush runs the pending call for key now. It reports whether one was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	d.mu.Unlock()
	e.fn()
	return true
}

// Cancel drops the pending call for key without running it.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return true
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// FlushAll runs every pending call now.
func (d *Debouncer) FlushAll() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.mu.Unlock()
	for _, k := range keys {
		d.Flush(k)
	}
}

// Stop refuses new triggers. With flush set, pending calls run first;
// otherwise they are dropped.
func (d *Debouncer) Stop(flush bool) {
	if flush {
		d.FlushAll()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for k, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, k)
	}
}
