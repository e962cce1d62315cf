package hub

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
}

func TestHubBroadcastDelivers(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 4)}
	h.register <- c
	waitForCount(t, h, 1)

	if err := h.BroadcastJSON(map[string]string{"state": "idle"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	select {
	case data := <-c.send:
		var got map[string]string
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if got["state"] != "idle" {
			t.Errorf("broadcast payload = %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	slow := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- slow
	waitForCount(t, h, 1)

	// First message fills the buffer; the second finds it full and the
	// client is removed. ClientCount polls concurrently with the removal.
	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))
	waitForCount(t, h, 0)

	if _, ok := <-slow.send; !ok {
		return // channel closed after the buffered message, as expected
	}
	if _, ok := <-slow.send; ok {
		t.Error("dropped client's send channel was not closed")
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- c
	waitForCount(t, h, 1)

	h.unregister <- c
	waitForCount(t, h, 0)

	if _, ok := <-c.send; ok {
		t.Error("unregistered client's send channel was not closed")
	}
}

func TestHubBroadcastJSONRejectsUnencodable(t *testing.T) {
	h := New("test", nil)

	if err := h.BroadcastJSON(func() {}); err == nil {
		t.Error("expected an encode error for an unencodable value")
	}
}
