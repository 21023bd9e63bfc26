package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func connect(hub *Hub, userID string, d *Dispatcher) *Client {
	c := NewClient(hub, nil, userID, d, 100)
	hub.Register(c)
	return c
}

type frame struct {
	Event string          `json:"event"`
	AckID json.RawMessage `json:"ackId"`
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *AckError       `json:"error"`
}

func readFrame(t *testing.T, c *Client) frame {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return frame{}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}
