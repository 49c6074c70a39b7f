package cart

import (
	"strings"
	"sync"
	"time"
)

// Debouncer runs the last call scheduled for a key once the key has been
// quiet for the delay (a trailing debounce). It is safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
	stopped bool
	running sync.WaitGroup
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a Debouncer
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Schedule replaces any pending call for key and restarts its timer
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	call := &pendingCall{fn: fn}
	call.timer = time.AfterFunc(d.delay, func() { d.fire(key, call) })
	d.pending[key] = call
}

func (d *Debouncer) fire(key string, call *pendingCall) {
	d.mu.Lock()
	// a newer Schedule or a Flush already took over this key
	if d.pending[key] != call {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	call.fn()
}

// Flush runs every pending call now and waits for calls already running
func (d *Debouncer) Flush() {
	d.mu.Lock()
	calls := make([]*pendingCall, 0, len(d.pending))
	for key, call := range d.pending {
		call.timer.Stop()
		calls = append(calls, call)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, call := range calls {
		call.fn()
	}
	d.running.Wait()
}

// Cancel drops the pending call for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	call, ok := d.pending[key]
	if !ok {
		return false
	}
	call.timer.Stop()
	delete(d.pending, key)
	return true
}

// CancelPrefix drops every pending call whose key starts with prefix and
// returns how many were dropped
func (d *Debouncer) CancelPrefix(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for key, call := range d.pending {
		if strings.HasPrefix(key, prefix) {
			call.timer.Stop()
			delete(d.pending, key)
			n++
		}
	}
	return n
}

// Stop cancels pending calls and rejects new ones. Calls already running
// are waited for.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()
	d.running.Wait()
}

// Pending returns the number of scheduled calls
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
