package server

import (
	"net"

	"github.com/gorilla/websocket"

	"github.com/beanz-y/not-the-end/protocol"
)

// messageConn abstracts one player connection over either transport. Both
// carry the same JSON commands; the TCP form delimits them with newlines,
// the WebSocket form maps one message to one text frame.
type messageConn interface {
	// ReadMessage blocks until one complete message arrives.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one complete message.
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	conn   net.Conn
	reader *protocol.Reader
	writer *protocol.Writer
}

func newTCPConn(conn net.Conn, maxMessageBytes int) *tcpConn {
	return &tcpConn{
		conn:   conn,
		reader: protocol.NewReader(conn, maxMessageBytes),
		writer: protocol.NewWriter(conn),
	}
}

func (c *tcpConn) ReadMessage() ([]byte, error)   { return c.reader.Next() }
func (c *tcpConn) WriteMessage(data []byte) error { return c.writer.WriteRaw(data) }
func (c *tcpConn) Close() error                   { return c.conn.Close() }
func (c *tcpConn) RemoteAddr() string             { return c.conn.RemoteAddr().String() }

type wsConn struct {
	conn *websocket.Conn
	addr string
}

func newWSConn(conn *websocket.Conn, addr string, maxMessageBytes int) *wsConn {
	if addr == "" {
		addr = conn.RemoteAddr().String()
	}
	if maxMessageBytes <= 0 {
		maxMessageBytes = protocol.DefaultMaxMessageBytes
	}
	conn.SetReadLimit(int64(maxMessageBytes))
	return &wsConn{conn: conn, addr: addr}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error       { return c.conn.Close() }
func (c *wsConn) RemoteAddr() string { return c.addr }
