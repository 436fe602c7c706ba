package coalesce

import (
	"testing"
	"time"
)

func collect(t *testing.T, s *Scheduler, window time.Duration) int {
	t.Helper()
	count := 0
	deadline := time.After(window)
	for {
		select {
		case <-s.Fires():
			count++
		case <-deadline:
			return count
		}
	}
}

func TestBurstProducesOneFire(t *testing.T) {
	for _, mode := range []Mode{Debounce, Coalesce} {
		s := New()
		s.Register("tabs", mode, 10*time.Millisecond)
		for i := 0; i < 50; i++ {
			s.Trigger("tabs")
		}
		if got := collect(t, s, 100*time.Millisecond); got != 1 {
			t.Errorf("mode %d: got %d fires, want 1", mode, got)
		}
	}
}

func TestSingleTriggerFires(t *testing.T) {
	s := New()
	s.Register("tabs", Debounce, 5*time.Millisecond)
	s.Trigger("tabs")
	if got := collect(t, s, 50*time.Millisecond); got != 1 {
		t.Errorf("got %d fires, want 1", got)
	}
}

func TestCancelSuppressesFire(t *testing.T) {
	s := New()
	s.Register("tabs", Debounce, 5*time.Millisecond)
	s.Trigger("tabs")
	s.Cancel("tabs")
	if got := collect(t, s, 30*time.Millisecond); got != 0 {
		t.Errorf("got %d fires after cancel, want 0", got)
	}
	if s.Pending("tabs") {
		t.Error("channel still pending after cancel")
	}
}

func TestSeparateChannelsFireIndependently(t *testing.T) {
	s := New()
	s.Register("broadcast", Debounce, 5*time.Millisecond)
	s.Register("render", Coalesce, 5*time.Millisecond)
	s.Trigger("broadcast")
	s.Trigger("render")

	seen := map[string]int{}
	deadline := time.After(60 * time.Millisecond)
	for len(seen) < 2 {
		select {
		case name := <-s.Fires():
			seen[name]++
		case <-deadline:
			t.Fatalf("timed out waiting for fires, saw %v", seen)
		}
	}
	if seen["broadcast"] != 1 || seen["render"] != 1 {
		t.Errorf("fires = %v", seen)
	}
}

func TestRetriggerAfterFire(t *testing.T) {
	s := New()
	s.Register("tabs", Coalesce, 5*time.Millisecond)
	s.Trigger("tabs")
	time.Sleep(20 * time.Millisecond)
	s.Trigger("tabs")
	if got := collect(t, s, 50*time.Millisecond); got != 2 {
		t.Errorf("got %d fires across two windows, want 2", got)
	}
}

func TestUnknownChannelIgnored(t *testing.T) {
	s := New()
	s.Trigger("nope")
	s.Cancel("nope")
	if s.Pending("nope") {
		t.Error("unknown channel reported pending")
	}
}
