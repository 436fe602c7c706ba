package bridge

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func waitEvent(t *testing.T, b *Bridge, d time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-b.Events():
		return ev, true
	case <-time.After(d):
		return Event{}, false
	}
}

func TestDispatchActivatedBypassesCoalescing(t *testing.T) {
	b := New(0)
	b.dispatch(incomingMsg{Type: "tab.activated", WindowID: 4, TabID: 42})

	ev, ok := waitEvent(t, b, 5*time.Millisecond)
	if !ok {
		t.Fatal("activation should be delivered immediately")
	}
	if ev.Kind != EventActivated || ev.TabID != 42 || ev.WindowID != 4 {
		t.Errorf("got %+v, want activated tab 42 window 4", ev)
	}
}

func TestDispatchCoalescesBursts(t *testing.T) {
	b := New(0)
	for i := 0; i < 10; i++ {
		b.dispatch(incomingMsg{Type: "tab.created", WindowID: 4})
	}
	b.dispatch(incomingMsg{Type: "tab.moved", WindowID: 4})

	ev, ok := waitEvent(t, b, 200*time.Millisecond)
	if !ok {
		t.Fatal("burst should produce a refresh")
	}
	if ev.Kind != EventRefresh {
		t.Errorf("kind = %v, want EventRefresh", ev.Kind)
	}
	if _, more := waitEvent(t, b, 50*time.Millisecond); more {
		t.Error("burst produced more than one refresh")
	}
}

func TestDispatchDropsLoadingUpdates(t *testing.T) {
	b := New(0)
	b.dispatch(incomingMsg{
		Type:     "tab.updated",
		WindowID: 4,
		Changed:  json.RawMessage(`{"status":"loading"}`),
	})
	if _, ok := waitEvent(t, b, 50*time.Millisecond); ok {
		t.Error("loading-only update should not schedule a refresh")
	}
}

func TestDispatchRoutesResponses(t *testing.T) {
	b := New(0)
	ch := make(chan incomingMsg, 1)
	b.mu.Lock()
	b.pending["cmd-1"] = ch
	b.mu.Unlock()

	b.dispatch(incomingMsg{ID: "cmd-1", NewGroupID: 8})

	select {
	case resp := <-ch:
		if resp.NewGroupID != 8 {
			t.Errorf("NewGroupID = %d, want 8", resp.NewGroupID)
		}
	case <-time.After(time.Second):
		t.Fatal("response never routed")
	}

	b.mu.Lock()
	_, still := b.pending["cmd-1"]
	b.mu.Unlock()
	if still {
		t.Error("resolved request left in pending table")
	}
}

func TestDispatchRemembersWindow(t *testing.T) {
	b := New(0)
	b.dispatch(incomingMsg{Type: "tab.created", WindowID: 9})
	if got := b.MainWindowID(); got != 9 {
		t.Errorf("MainWindowID = %d, want 9", got)
	}
}

func TestRequestWithoutConnection(t *testing.T) {
	b := New(0)
	if _, ok := b.request(t.Context(), outgoingMsg{Action: "get-tabs"}); ok {
		t.Error("request with no connection should resolve empty")
	}
}

func TestConnectionReplacementKeepsNewLink(t *testing.T) {
	b := New(0)
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c1, _, err := websocket.Dial(ctx, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c1.CloseNow()
	if ev, ok := waitEvent(t, b, time.Second); !ok || ev.Kind != EventConnected {
		t.Fatalf("first connect event = %+v (ok=%v), want EventConnected", ev, ok)
	}

	c2, _, err := websocket.Dial(ctx, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.CloseNow()
	if ev, ok := waitEvent(t, b, time.Second); !ok || ev.Kind != EventConnected {
		t.Fatalf("second connect event = %+v (ok=%v), want EventConnected", ev, ok)
	}

	// A request correlated against the replacement must survive the old
	// handler's teardown.
	ch := make(chan incomingMsg, 1)
	b.mu.Lock()
	b.pending["cmd-kept"] = ch
	b.mu.Unlock()

	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case ev := <-b.Events():
			if ev.Kind == EventDisconnected && b.Connected() {
				t.Fatal("disconnect emitted while a live connection is attached")
			}
		case <-deadline:
			b.mu.Lock()
			_, kept := b.pending["cmd-kept"]
			b.mu.Unlock()
			if !kept {
				t.Error("replacement teardown purged the new connection's pending request")
			}
			select {
			case _, open := <-ch:
				if !open {
					t.Error("pending channel closed by the replaced connection's teardown")
				}
			default:
			}
			return
		}
	}
}
