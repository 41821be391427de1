package server

import (
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/gorilla/websocket"

	"github.com/beanz-y/not-the-end/protocol"
)

// sendBufferSize is the per-connection outbound queue. Messages beyond it
// are dropped with a log note rather than blocking the narrator.
const sendBufferSize = 64

// Client is the server's handle on one connected player.
type Client struct {
	srv  *Server
	conn messageConn

	// ID is the connection identifier: the remote address:port pair. One
	// physical endpoint maps to one player for the session lifetime.
	ID string

	// Send is drained by WritePump; closed by the hub on unregister.
	Send chan []byte
}

func newClient(srv *Server, conn messageConn) *Client {
	return &Client{
		srv:  srv,
		conn: conn,
		ID:   conn.RemoteAddr(),
		Send: make(chan []byte, sendBufferSize),
	}
}

// ReadPump receives messages from the player and dispatches them. It runs
// in its own goroutine per connection and blocks on the socket; it exits
// when the peer disconnects, sends malformed data, or Stop closes the
// socket. Receive failure is the only trigger for roster cleanup.
func (c *Client) ReadPump() {
	defer func() {
		c.srv.unregisterClient(c)
		c.conn.Close()
	}()

	for {
		data, err := c.conn.ReadMessage()
		if err != nil {
			if !isExpectedClose(err) {
				slog.Info("connection lost", "tag", "server", "conn", c.ID, "err", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if errors.Is(err, protocol.ErrUnknownCommand) {
			// Out-of-schema commands are a silent no-op.
			continue
		}
		if err != nil {
			// A payload that fails to parse as its expected shape aborts
			// the connection, same as any transport error.
			slog.Info("malformed payload, dropping connection", "tag", "server", "conn", c.ID, "err", err)
			return
		}

		c.srv.dispatch(c, msg)
	}
}

// WritePump sends queued messages to the player. It runs in its own
// goroutine per connection and exits when the hub closes Send or a write
// fails.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for data := range c.Send {
		if err := c.conn.WriteMessage(data); err != nil {
			// Best-effort: log and keep the connection; only the read
			// side decides disconnection.
			slog.Warn("write failed, message dropped", "tag", "server", "conn", c.ID, "err", err)
		}
	}
}

func isExpectedClose(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
