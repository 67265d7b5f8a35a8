package ws

import (
	"sync"
	"testing"
)

func newTestClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 4)}
}

func TestHub_SendToUser(t *testing.T) {
	h := NewHub()
	c := newTestClient(1)
	h.Register(c)

	h.SendToUser(1, map[string]string{"event": "ringing"})
	select {
	case msg := <-c.Send:
		if len(msg) == 0 {
			t.Fatal("empty payload delivered")
		}
	default:
		t.Fatal("expected a message on the client channel")
	}

	// No connection for this user, must not block.
	h.SendToUser(99, map[string]string{"event": "ringing"})
}

func TestHub_SendAfterCloseDoesNotPanic(t *testing.T) {
	h := NewHub()
	c := newTestClient(1)
	h.Register(c)
	c.Close()
	c.Close() // idempotent

	h.SendToUser(1, map[string]string{"event": "completed"})
}

func TestHub_ConcurrentSendAndClose(t *testing.T) {
	h := NewHub()
	const clients = 8
	for i := 0; i < clients; i++ {
		h.Register(newTestClient(1))
	}

	h.mu.RLock()
	var all []*Client
	for c := range h.byUser[1] {
		all = append(all, c)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, c := range all {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			<-start
			c.Close()
		}(c)
	}
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			h.SendToUser(1, map[string]string{"event": "in_progress"})
		}()
	}
	close(start)
	wg.Wait()

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.byUser[1]) != 0 {
		t.Fatalf("expected all connections unregistered, %d left", len(h.byUser[1]))
	}
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	h.Register(c)

	h.SendToUser(1, map[string]string{"event": "ringing"})
	h.SendToUser(1, map[string]string{"event": "in_progress"}) // buffer full, dropped

	if got := len(c.Send); got != 1 {
		t.Fatalf("expected 1 buffered message, got %d", got)
	}
}
