package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(client)

	require.NoError(t, hub.Broadcast("proposal_viewed", map[string]any{"proposal_number": "KP-2026-A1B2C3"}))

	select {
	case payload := <-client.send:
		assert.Contains(t, string(payload), `"type":"proposal_viewed"`)
		assert.Contains(t, string(payload), "KP-2026-A1B2C3")
	case <-time.After(time.Second):
		t.Fatal("событие не дошло до клиента")
	}
}

func TestHub_RegisterAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ctx)
	go hub.Run()
	cancel()

	// После остановки главный цикл каналы не читает: вызовы обязаны
	// вернуться, а не зависнуть навсегда.
	done := make(chan struct{})
	go func() {
		client := &Client{hub: hub, send: make(chan []byte, 1)}
		hub.Register(client)
		hub.Unregister(client)
		_ = hub.Broadcast("proposal_viewed", map[string]any{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister заблокировались после остановки хаба")
	}
}
