// Package client is the player-side connection manager: one outbound
// connection to the narrator, sheet updates going out, session commands
// coming in.
package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/beanz-y/not-the-end/draw"
	"github.com/beanz-y/not-the-end/hero"
	"github.com/beanz-y/not-the-end/protocol"
	"github.com/beanz-y/not-the-end/session"
)

// Event is a notification from the connection to the UI/control layer.
type Event interface {
	Kind() string
}

// Connected fires once the handshake has been transmitted.
type Connected struct {
	Addr string
}

// Disconnected fires exactly once per transition into the disconnected
// state, whatever caused it.
type Disconnected struct {
	Reason string
}

// TestStarted delivers a start_test command from the narrator.
type TestStarted struct {
	Params session.Params
}

func (Connected) Kind() string    { return "connected" }
func (Disconnected) Kind() string { return "disconnected" }
func (TestStarted) Kind() string  { return "test_started" }

// ErrNotConnected is returned by Connect-dependent operations that are
// not simple fire-and-forget sends.
var ErrNotConnected = errors.New("not connected to narrator")

// Client maintains the player's single connection to the narrator. All
// exported methods are safe for concurrent use.
type Client struct {
	maxMessageBytes int

	mu        sync.Mutex
	conn      net.Conn
	writer    *protocol.Writer
	connected bool
	dialing   bool

	// Events is drained by the UI/control layer.
	Events chan Event
}

// New creates a disconnected client. maxMessageBytes bounds one inbound
// framed message; 0 uses the protocol default.
func New(maxMessageBytes int) *Client {
	return &Client{
		maxMessageBytes: maxMessageBytes,
		Events:          make(chan Event, 16),
	}
}

// Connect dials the narrator, blocking until the connection succeeds or
// fails. On success it immediately transmits the connect handshake with
// the given sheet and starts the background receive loop. On failure the
// error is returned and no retry is attempted.
func (c *Client) Connect(host string, port int, sheet hero.Sheet) error {
	// The dialing flag spans the whole check-to-commit window so two
	// concurrent Connect calls cannot both dial.
	c.mu.Lock()
	if c.connected || c.dialing {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	c.dialing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.dialing = false
		c.mu.Unlock()
	}()

	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to narrator at %s: %w", addr, err)
	}

	writer := protocol.NewWriter(conn)
	if err := writer.Write(protocol.NewConnect(sheet)); err != nil {
		conn.Close()
		return fmt.Errorf("sending handshake: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.writer = writer
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(conn)

	slog.Info("connected to narrator", "tag", "client", "addr", addr)
	c.emit(Connected{Addr: addr})
	return nil
}

// readLoop receives narrator commands until the connection dies. It runs
// in its own goroutine and blocks on the socket.
func (c *Client) readLoop(conn net.Conn) {
	reader := protocol.NewReader(conn, c.maxMessageBytes)
	for {
		data, err := reader.Next()
		if err != nil {
			c.teardown(closeReason(err))
			return
		}

		msg, err := protocol.Decode(data)
		if errors.Is(err, protocol.ErrUnknownCommand) {
			continue
		}
		if err != nil {
			c.teardown("malformed payload from narrator")
			return
		}

		switch m := msg.(type) {
		case *protocol.StartTest:
			c.emit(TestStarted{Params: session.Params{Difficulty: m.Difficulty, Danger: m.Danger}})
		default:
			// Player-to-narrator commands echoed back are a no-op.
		}
	}
}

// Send transmits one message. A no-op when not connected; a write failure
// drops the message with a log note and nothing is retried.
func (c *Client) Send(msg protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	if err := c.writer.Write(msg); err != nil {
		slog.Warn("send failed, message dropped", "tag", "client", "err", err)
	}
}

// SendSheetUpdate propagates a live sheet edit to the narrator.
func (c *Client) SendSheetUpdate(sheet hero.Sheet) {
	c.Send(protocol.NewUpdateSheet(sheet))
}

// SendResult transmits the terminal draw_result of a completed test. It
// satisfies session.ResultSender.
func (c *Client) SendResult(r draw.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}
	return c.writer.Write(protocol.NewDrawResult(r.Successes, r.Complications))
}

// IsConnected reports the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Disconnect closes the connection if one is active. Idempotent: calling
// it while disconnected does nothing, and the Disconnected notification
// is surfaced exactly once per transition.
func (c *Client) Disconnect() {
	c.teardown("disconnect requested")
}

// teardown performs the single transition into the disconnected state.
// Both Disconnect and a dying read loop funnel through here; whichever
// arrives second sees connected == false and does nothing.
func (c *Client) teardown(reason string) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	conn := c.conn
	c.conn = nil
	c.writer = nil
	c.mu.Unlock()

	conn.Close()
	slog.Info("disconnected", "tag", "client", "reason", reason)
	c.emit(Disconnected{Reason: reason})
}

func closeReason(err error) string {
	if errors.Is(err, io.EOF) {
		return "narrator closed the connection"
	}
	if errors.Is(err, net.ErrClosed) {
		return "connection closed"
	}
	return fmt.Sprintf("connection lost: %v", err)
}

func (c *Client) emit(ev Event) {
	select {
	case c.Events <- ev:
	default:
		slog.Warn("client event dropped", "tag", "client", "event", ev.Kind())
	}
}
