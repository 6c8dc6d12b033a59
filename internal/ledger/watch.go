package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/julianstephens/stackspledge/internal/logger"
)

// TxEvent is a transaction status update pushed by the events endpoint.
type TxEvent struct {
	TxID   string `json:"txid"`
	Status string `json:"status"`
}

// Final reports whether the transaction left the mempool, either confirmed,
// aborted by the contract, or dropped.
func (e TxEvent) Final() bool {
	return e.Status == "success" ||
		strings.HasPrefix(e.Status, "abort_") ||
		strings.HasPrefix(e.Status, "dropped_")
}

// Succeeded reports whether the transaction was confirmed.
func (e TxEvent) Succeeded() bool {
	return e.Status == "success"
}

type subscribeMsg struct {
	Action string   `json:"action"`
	TxIDs  []string `json:"txids"`
}

// Watcher follows transaction status over a WebSocket subscription.
type Watcher struct {
	url    string
	apiKey string
	dialer websocket.Dialer
}

func NewWatcher(eventsURL, apiKey string) *Watcher {
	return &Watcher{
		url:    eventsURL,
		apiKey: apiKey,
		dialer: websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}
}

// Watch subscribes to txids and calls fn for each event. It returns nil once
// every tracked transaction reached a final status, or when fn returns false.
func (w *Watcher) Watch(ctx context.Context, txids []string, fn func(TxEvent) bool) error {
	if len(txids) == 0 {
		return nil
	}

	header := http.Header{}
	if w.apiKey != "" {
		header.Set("Authorization", "Bearer "+w.apiKey)
	}
	conn, resp, err := w.dialer.DialContext(ctx, w.url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to events endpoint: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller cancels
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(subscribeMsg{Action: "subscribe", TxIDs: txids}); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	pending := make(map[string]bool, len(txids))
	for _, id := range txids {
		pending[id] = true
	}

	for len(pending) > 0 {
		var ev TxEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return fmt.Errorf("events endpoint closed with %d transaction(s) pending", len(pending))
			}
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !pending[ev.TxID] {
			continue
		}

		logger.Debug("Transaction event", "txid", ev.TxID, "status", ev.Status)
		if ev.Final() {
			delete(pending, ev.TxID)
		}
		if !fn(ev) {
			return nil
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}
