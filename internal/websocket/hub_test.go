package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
)

func testHub() *Hub {
	return NewHub(slog.Default())
}

func TestRegisterUnregister(t *testing.T) {
	h := testHub()

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)
	if h.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", h.ClientCount())
	}

	h.Unregister(c)
	if h.ClientCount() != 0 {
		t.Fatalf("ClientCount = %d, want 0", h.ClientCount())
	}

	// Unregistering twice must not panic (double close guard).
	h.Unregister(c)
}

func TestBroadcastDelivers(t *testing.T) {
	h := testHub()

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)

	h.Broadcast(BalanceMessage("penalty", "issued", 7, 2, 35))

	select {
	case data := <-c.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if msg.Type != "penalty_issued" {
			t.Errorf("Type = %q, want penalty_issued", msg.Type)
		}
		if msg.Extra["points"] != float64(35) {
			t.Errorf("Extra[points] = %v, want 35", msg.Extra["points"])
		}
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := testHub()

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)

	h.Broadcast(NewMessage("chore", "toggled", 1, nil))
	h.Broadcast(NewMessage("chore", "toggled", 2, nil)) // buffer full, dropped

	if got := len(c.send); got != 1 {
		t.Fatalf("buffered messages = %d, want 1", got)
	}
}
