// Package coalesce collapses bursts of signals into single scheduled fires.
//
// A Scheduler owns named channels, each with its own quiet period and mode.
// Debounce channels rearm their timer on every trigger, so a burst produces
// one fire after the last signal. Coalesce channels arm once and ignore
// further triggers until the pending fire lands, capping fire frequency at
// the channel's cadence regardless of burst size. Either way the previous
// timer is stopped before a new one is armed, so no timer is ever left to
// fire stale.
package coalesce

import (
	"sync"
	"time"
)

// Mode selects how a channel reacts to triggers while a fire is pending.
type Mode int

const (
	// Debounce restarts the quiet period on every trigger (latest wins).
	Debounce Mode = iota
	// Coalesce keeps the first deadline; later triggers are no-ops.
	Coalesce
)

type channel struct {
	mode    Mode
	quiet   time.Duration
	timer   *time.Timer
	pending bool
	gen     uint64 // invalidates in-flight timer callbacks after Cancel
}

// Scheduler routes coalesced fires to a single output channel. Fires carry
// no payload: consumers always re-read authoritative state, so no signal's
// data can be lost by coalescing.
type Scheduler struct {
	mu    sync.Mutex
	chans map[string]*channel
	fires chan string
}

// New creates a Scheduler. The fires channel is buffered so timer callbacks
// never block; a consumer that lags simply sees fires back to back.
func New() *Scheduler {
	return &Scheduler{
		chans: make(map[string]*channel),
		fires: make(chan string, 16),
	}
}

// Register creates a named channel. Registering an existing name replaces
// its configuration and cancels any pending fire.
func (s *Scheduler) Register(name string, mode Mode, quiet time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.chans[name]; ok {
		ch.cancelLocked()
	}
	s.chans[name] = &channel{mode: mode, quiet: quiet}
}

// Fires returns the stream of channel names whose quiet period elapsed.
func (s *Scheduler) Fires() <-chan string {
	return s.fires
}

// Trigger signals the named channel. Unknown names are ignored.
func (s *Scheduler) Trigger(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chans[name]
	if !ok {
		return
	}

	if ch.pending {
		if ch.mode == Coalesce {
			return
		}
		// Debounce: drop the armed timer and start the window over.
		ch.cancelLocked()
	}

	ch.pending = true
	gen := ch.gen
	ch.timer = time.AfterFunc(ch.quiet, func() {
		s.fire(name, gen)
	})
}

// Cancel clears any pending fire on the named channel.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.chans[name]; ok {
		ch.cancelLocked()
	}
}

// Pending reports whether the named channel has a fire armed.
func (s *Scheduler) Pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chans[name]
	return ok && ch.pending
}

func (s *Scheduler) fire(name string, gen uint64) {
	s.mu.Lock()
	ch, ok := s.chans[name]
	if !ok || ch.gen != gen {
		// Cancelled or reconfigured after the timer was armed.
		s.mu.Unlock()
		return
	}
	ch.pending = false
	ch.timer = nil
	ch.gen++
	s.mu.Unlock()

	select {
	case s.fires <- name:
	default:
	}
}

func (ch *channel) cancelLocked() {
	if ch.timer != nil {
		ch.timer.Stop()
		ch.timer = nil
	}
	ch.pending = false
	ch.gen++
}
