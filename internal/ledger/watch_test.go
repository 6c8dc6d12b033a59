package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func eventsServer(t *testing.T, events []TxEvent) (string, <-chan subscribeMsg) {
	t.Helper()
	subs := make(chan subscribeMsg, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub subscribeMsg
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		subs <- sub
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		// Hold the connection open until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), subs
}

func TestTxEvent_Final(t *testing.T) {
	tests := []struct {
		status string
		final  bool
	}{
		{"pending", false},
		{"success", true},
		{"abort_by_response", true},
		{"abort_by_post_condition", true},
		{"dropped_replace_by_fee", true},
	}
	for _, tt := range tests {
		if got := (TxEvent{Status: tt.status}).Final(); got != tt.final {
			t.Errorf("Final(%q) = %v, want %v", tt.status, got, tt.final)
		}
	}
}

func TestWatcher_Watch(t *testing.T) {
	url, subs := eventsServer(t, []TxEvent{
		{TxID: "0x1", Status: "pending"},
		{TxID: "0xother", Status: "success"},
		{TxID: "0x1", Status: "success"},
		{TxID: "0x2", Status: "abort_by_response"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seen []TxEvent
	err := NewWatcher(url, "").Watch(ctx, []string{"0x1", "0x2"}, func(ev TxEvent) bool {
		seen = append(seen, ev)
		return true
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	sub := <-subs
	if sub.Action != "subscribe" || len(sub.TxIDs) != 2 {
		t.Errorf("subscription = %+v", sub)
	}
	if len(seen) != 3 {
		t.Fatalf("events = %+v, want 3 for tracked txids", seen)
	}
	if seen[1].TxID != "0x1" || !seen[1].Succeeded() {
		t.Errorf("second event = %+v", seen[1])
	}
}

func TestWatcher_StopEarly(t *testing.T) {
	url, _ := eventsServer(t, []TxEvent{{TxID: "0x1", Status: "pending"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	calls := 0
	err := NewWatcher(url, "").Watch(ctx, []string{"0x1"}, func(TxEvent) bool {
		calls++
		return false
	})
	if err != nil || calls != 1 {
		t.Errorf("Watch() = %v after %d calls, want nil after 1", err, calls)
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	url, _ := eventsServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := NewWatcher(url, "").Watch(ctx, []string{"0x1"}, func(TxEvent) bool { return true })
	if err == nil {
		t.Fatal("Watch() should fail when the context ends")
	}
}

func TestWatcher_NoTxIDs(t *testing.T) {
	if err := NewWatcher("ws://127.0.0.1:1", "").Watch(context.Background(), nil, nil); err != nil {
		t.Errorf("Watch(nil) error = %v", err)
	}
}
