package websocket

import (
	"context"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 8
	pingInterval   = 30 * time.Second
)

type client struct {
	conn *ws.Conn
	send chan []byte
}

// Handler returns the HTTP handler that upgrades connections and runs them
// as hub clients until they disconnect.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket accept", "error", err)
			return
		}

		c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
		h.register(c)
		defer h.unregister(c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go c.writeLoop(ctx)

		// Incoming frames are discarded; the socket is push-only. Read until
		// the peer goes away.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}
}

func (c *client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
