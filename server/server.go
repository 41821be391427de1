// Package server is the narrator-side connection manager: it accepts
// player connections over TCP and WebSocket, maintains the roster of
// connected players, and routes inbound commands to the roster and the
// test-history log.
package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/beanz-y/not-the-end/config"
	"github.com/beanz-y/not-the-end/history"
	"github.com/beanz-y/not-the-end/netutil"
	"github.com/beanz-y/not-the-end/protocol"
	"github.com/beanz-y/not-the-end/roster"
	"github.com/beanz-y/not-the-end/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ErrUnknownConnection is returned by Send for an ID not in the client set.
var ErrUnknownConnection = fmt.Errorf("unknown connection")

// Server accepts player connections and owns the client set. Lifecycle
// events flow through the Register/Unregister channels so connect and
// disconnect handling stays serialized on the hub goroutine; the client
// map itself is lock-guarded so Send and Broadcast can read it directly.
type Server struct {
	Config  *config.Config
	Roster  *roster.Roster
	History history.Recorder

	Register   chan *Client
	Unregister chan *Client

	// OnResult, if set, is called with each recorded test result.
	OnResult func(rec history.Record)

	mu       sync.RWMutex
	clients  map[string]*Client
	lastTest map[string]session.Params // params of the last test sent per connection

	listener net.Listener
	quit     chan struct{}
	hubDone  chan struct{}
}

// New creates a Server. Roster and history must be non-nil.
func New(cfg *config.Config, r *roster.Roster, h history.Recorder) *Server {
	return &Server{
		Config:     cfg,
		Roster:     r,
		History:    h,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		lastTest:   make(map[string]session.Params),
		quit:       make(chan struct{}),
		hubDone:    make(chan struct{}),
	}
}

// Start binds the TCP listener and launches the hub and accept loops. A
// bind failure (port already in use) is returned to the caller and is not
// fatal to the process; Start may be re-invoked.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.ListenHost, s.Config.ListenPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}
	s.listener = listener

	go s.runHub()
	go s.acceptLoop()

	slog.Info("listening for players", "tag", "server", "addr", addr)
	return nil
}

// Addr returns the bound TCP address, useful when ListenPort is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// acceptLoop accepts TCP connections until Stop closes the listener. Each
// accepted connection gets its own receive loop.
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			slog.Warn("accept failed", "tag", "server", "err", err)
			continue
		}

		client := newClient(s, newTCPConn(conn, s.Config.MaxMessageBytes))
		s.registerClient(client)
		go client.WritePump()
		go client.ReadPump()
	}
}

// registerClient hands a client to the hub, or drops it when the server
// is already shutting down.
func (s *Server) registerClient(c *Client) {
	select {
	case s.Register <- c:
	case <-s.quit:
		c.conn.Close()
	}
}

// unregisterClient notifies the hub of a dead connection. After Stop the
// hub is gone and cleanup already happened, so the notice is skipped.
func (s *Server) unregisterClient(c *Client) {
	select {
	case s.Unregister <- c:
	case <-s.quit:
	}
}

// ServeWS upgrades an HTTP request into a player connection on the same
// hub as the TCP transport.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "server", "err", err)
		return
	}

	client := newClient(s, newWSConn(conn, r.RemoteAddr, s.Config.MaxMessageBytes))
	s.registerClient(client)
	go client.WritePump()
	go client.ReadPump()
}

// runHub serializes connect/disconnect bookkeeping.
func (s *Server) runHub() {
	defer close(s.hubDone)
	for {
		select {
		case <-s.quit:
			return
		case client := <-s.Register:
			s.mu.Lock()
			s.clients[client.ID] = client
			count := len(s.clients)
			s.mu.Unlock()
			slog.Info("player connected", "tag", "server", "conn", client.ID, "total", count)

		case client := <-s.Unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				delete(s.lastTest, client.ID)
				close(client.Send)
			}
			count := len(s.clients)
			s.mu.Unlock()

			s.Roster.Remove(client.ID)
			slog.Info("player disconnected", "tag", "server", "conn", client.ID, "total", count)
		}
	}
}

// dispatch routes one decoded inbound command.
func (s *Server) dispatch(c *Client, msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.Connect:
		m.Data.Name = s.clampName(m.Data.Name)
		s.Roster.Put(c.ID, m.Data)
		slog.Info("player registered", "tag", "server", "conn", c.ID, "name", m.Data.Name, "archetype", m.Data.Archetype)

	case *protocol.UpdateSheet:
		// Wholesale replace; an update from a connection that skipped the
		// handshake still upserts its entry.
		m.Data.Name = s.clampName(m.Data.Name)
		s.Roster.Put(c.ID, m.Data)

	case *protocol.DrawResult:
		s.recordResult(c, m)

	case *protocol.StartTest:
		// In-schema but narrator-to-player only; ignore like any command
		// this side has no handler for.
		slog.Debug("ignoring start_test from player", "tag", "server", "conn", c.ID)
	}
}

// clampName truncates a hero name to the configured display limit.
func (s *Server) clampName(name string) string {
	limit := s.Config.MaxNameLength
	if limit <= 0 {
		return name
	}
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit])
}

func (s *Server) recordResult(c *Client, m *protocol.DrawResult) {
	s.mu.RLock()
	params := s.lastTest[c.ID]
	s.mu.RUnlock()

	name := ""
	if sheet, ok := s.Roster.Get(c.ID); ok {
		name = sheet.Name
	}

	rec := s.History.RecordResult(history.Record{
		ConnID:        c.ID,
		PlayerName:    name,
		Successes:     m.Successes,
		Complications: m.Complications,
		Difficulty:    params.Difficulty,
		Danger:        params.Danger,
		LeftScene:     session.HeroLeavesScene(params.Danger, m.Complications),
	})
	slog.Info("draw result", "tag", "server", "conn", c.ID, "name", name,
		"successes", m.Successes, "complications", m.Complications, "leftScene", rec.LeftScene)

	if s.OnResult != nil {
		s.OnResult(rec)
	}
}

// Send transmits one message to one connection, best-effort: a stalled
// peer drops the message with a log note and the roster entry stays; only
// a receive failure disconnects a player.
func (s *Server) Send(connID string, msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	s.mu.RLock()
	client, ok := s.clients[connID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, connID)
	}

	netutil.SafeSend(client.Send, data)
	return nil
}

// SendTest issues start_test to one player and remembers its parameters
// so the eventual draw_result can be logged with difficulty and danger.
func (s *Server) SendTest(connID string, params session.Params) error {
	if err := s.Send(connID, protocol.NewStartTest(params.Difficulty, params.Danger)); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastTest[connID] = params
	s.mu.Unlock()
	return nil
}

// BroadcastTest issues start_test to every connected player.
func (s *Server) BroadcastTest(params session.Params) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
		s.lastTest[id] = params
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.Send(id, protocol.NewStartTest(params.Difficulty, params.Danger)); err != nil {
			slog.Warn("broadcast send failed", "tag", "server", "conn", id, "err", err)
		}
	}
}

// ConnIDs returns the connected IDs in map order.
func (s *Server) ConnIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}

// Stop closes the listener and every active connection. Outstanding
// receive loops observe the closed sockets and terminate on their next
// blocking read.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for id, client := range s.clients {
		client.conn.Close()
		close(client.Send)
		delete(s.clients, id)
		delete(s.lastTest, id)
	}
	s.mu.Unlock()

	<-s.hubDone
	slog.Info("server stopped", "tag", "server")
}
