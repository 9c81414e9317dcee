package sse

import (
	"net/http"
	"time"
)

const (
	// Slack allowed on top of the keepalive interval for each write
	writeWait = 10 * time.Second

	// DefaultKeepalive is the interval between keepalive comments
	DefaultKeepalive = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one connected event-stream subscriber
type Client struct {
	hub         *Hub
	id          string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, id string) *Client {
	return &Client{
		hub:         hub,
		id:          id,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams the hub's events to the client until it disconnects or
// the hub closes. Each write pushes the connection's write deadline past the
// next keepalive, so the server's write timeout does not end the stream.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, clientID string, keepalive time.Duration) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(hub, clientID)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	write := func(msg []byte) bool {
		_ = rc.SetWriteDeadline(time.Now().Add(keepalive + writeWait))
		if _, err := w.Write(msg); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !write(formatSSEMessage("connected", `{"status":"connected"}`)) {
		return
	}

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return // Hub closed the channel
			}
			if !write(message) {
				return
			}

		case <-ticker.C:
			if !write([]byte(": keepalive\n\n")) {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
