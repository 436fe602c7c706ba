// Package bridge is the sidebar's boundary to the browser. A companion
// extension connects over a local WebSocket; tab and group lifecycle events
// flow in, typed commands flow out. Event bursts are coalesced through a
// 16ms quiet period before a refresh signal reaches the UI; activation
// events skip the queue so selection feedback feels instant.
//
// Failure policy: a dead or absent connection degrades every query to an
// empty result and every command to a silent no-op. Nothing here ever
// surfaces an error to the user. Worst case is a stale tab list until the
// next successful refresh.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"

	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/coalesce"
)

const notifyQuiet = 16 * time.Millisecond

// EventKind classifies events delivered to the UI.
type EventKind int

const (
	// EventRefresh: something changed in the window; re-fetch the snapshot.
	EventRefresh EventKind = iota
	// EventActivated: a tab became active. Delivered immediately, never
	// coalesced, and carries the tab id so preview caches can drop it.
	EventActivated
	// EventConnected / EventDisconnected: extension link state changed.
	EventConnected
	EventDisconnected
	// EventPrefsChanged is forwarded from the prefs watcher so preference
	// mutations ride the same refresh path as tab events.
	EventPrefsChanged
)

// Event is a normalized "something changed" signal.
type Event struct {
	Kind     EventKind
	WindowID int
	TabID    int
}

// Bridge owns the WebSocket listener, the single extension connection, and
// request/response correlation.
type Bridge struct {
	port   int
	events chan Event
	sched  *coalesce.Scheduler

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	pending map[string]chan incomingMsg

	// Window the extension most recently reported a snapshot for. Used
	// when a fetch has no explicit window id.
	mainWindowID atomic.Int64

	cmdSeq  atomic.Int64
	snapSeq atomic.Uint64
}

func New(port int) *Bridge {
	b := &Bridge{
		port:    port,
		events:  make(chan Event, 64),
		sched:   coalesce.New(),
		pending: make(map[string]chan incomingMsg),
	}
	b.sched.Register("notify", coalesce.Debounce, notifyQuiet)
	go b.pump()
	return b
}

// Events returns the stream of normalized change signals.
func (b *Bridge) Events() <-chan Event { return b.events }

// Port returns the configured listen port.
func (b *Bridge) Port() int { return b.port }

// Connected reports whether an extension is currently attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// MainWindowID returns the remembered window id, or 0 if none yet.
func (b *Bridge) MainWindowID() int { return int(b.mainWindowID.Load()) }

// pump turns coalescer fires into refresh events.
func (b *Bridge) pump() {
	for range b.sched.Fires() {
		b.emit(Event{Kind: EventRefresh, WindowID: b.MainWindowID()})
	}
}

func (b *Bridge) emit(ev Event) {
	select {
	case b.events <- ev:
	default:
		// UI is behind; it will re-fetch on the next event anyway.
	}
}

// NotifyPrefsChanged feeds a preference-store mutation into the event
// stream under the same coalescing rules as tab events.
func (b *Bridge) NotifyPrefsChanged() {
	b.emit(Event{Kind: EventPrefsChanged})
}

// Handler returns the http.Handler accepting extension connections. A new
// connection replaces any previous one.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}
		conn.SetReadLimit(16 << 20) // windows with many tabs produce large payloads

		ctx := r.Context()
		b.mu.Lock()
		if b.conn != nil {
			applog.Info("ws.replaced")
			b.conn.CloseNow()
		}
		b.conn = conn
		b.connCtx = ctx
		b.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)
		b.emit(Event{Kind: EventConnected})

		defer func() {
			b.mu.Lock()
			current := b.conn == conn
			if current {
				b.conn = nil
				b.connCtx = nil
				// Unblock every in-flight request; callers see empty
				// results. A replaced connection leaves the map alone:
				// those requests belong to its successor.
				for id, ch := range b.pending {
					close(ch)
					delete(b.pending, id)
				}
			}
			b.mu.Unlock()
			conn.CloseNow()
			if current {
				applog.Info("ws.disconnected")
				b.emit(Event{Kind: EventDisconnected})
			}
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg incomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			b.dispatch(msg)
		}
	})
}

// dispatch routes one incoming message: command responses to their waiting
// request, lifecycle events through classification and coalescing.
func (b *Bridge) dispatch(msg incomingMsg) {
	if msg.ID != "" {
		b.mu.Lock()
		ch, ok := b.pending[msg.ID]
		if ok {
			delete(b.pending, msg.ID)
		}
		b.mu.Unlock()
		if ok {
			ch <- msg
			close(ch)
		}
		return
	}

	applog.Info("ws.event", "type", msg.Type, "window", msg.WindowID)
	if msg.WindowID != 0 {
		b.mainWindowID.Store(int64(msg.WindowID))
	}

	switch msg.Type {
	case "tab.activated":
		// Immediate: selection feedback must not wait out the quiet
		// period. Carries the tab id so cached previews invalidate.
		b.emit(Event{Kind: EventActivated, WindowID: msg.WindowID, TabID: msg.TabID})
	case "tab.updated":
		if meaningful(msg.Changed) {
			b.sched.Trigger("notify")
		}
	case "tab.created", "tab.removed", "tab.moved",
		"group.created", "group.removed", "group.updated",
		"tabs-updated":
		b.sched.Trigger("notify")
	default:
		// Unknown event types are ignored; the next known one refreshes.
	}
}

// request sends a command and waits for its correlated response. With no
// connection, or on timeout, it returns a zero message and false. Callers
// always get a resolvable result instead of a hang.
func (b *Bridge) request(ctx context.Context, msg outgoingMsg) (incomingMsg, bool) {
	msg.ID = fmt.Sprintf("cmd-%d", b.cmdSeq.Add(1))

	b.mu.Lock()
	conn := b.conn
	connCtx := b.connCtx
	if conn == nil {
		b.mu.Unlock()
		return incomingMsg{}, false
	}
	ch := make(chan incomingMsg, 1)
	b.pending[msg.ID] = ch
	b.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		b.abandon(msg.ID)
		return incomingMsg{}, false
	}
	applog.Info("ws.send", "action", msg.Action, "id", msg.ID)
	if err := conn.Write(connCtx, websocket.MessageText, data); err != nil {
		applog.Error("ws.send", err, "action", msg.Action)
		b.abandon(msg.ID)
		return incomingMsg{}, false
	}

	timeout := time.NewTimer(3 * time.Second)
	defer timeout.Stop()
	select {
	case resp, ok := <-ch:
		return resp, ok
	case <-timeout.C:
		b.abandon(msg.ID)
		applog.Info("ws.timeout", "action", msg.Action, "id", msg.ID)
		return incomingMsg{}, false
	case <-ctx.Done():
		b.abandon(msg.ID)
		return incomingMsg{}, false
	}
}

// send fires a command without waiting for the ack payload. The ack is
// still consumed (in the background) so the pending table stays clean.
func (b *Bridge) send(msg outgoingMsg) {
	go b.request(context.Background(), msg)
}

func (b *Bridge) abandon(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

// ListenAndServe runs the WebSocket server until ctx is cancelled.
func (b *Bridge) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", b.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", b.port)
	applog.Info("bridge.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
