// Package server runs the TCP connection loop: it accepts connections, reads
// newline-terminated messages, and feeds every complete line through a single
// dispatch goroutine so that all registry mutation is strictly serialized.
package server

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// event is one unit of work for the dispatch goroutine: either a complete
// inbound line or a disconnect notice
type event struct {
	conn       model.ConnID
	line       string
	disconnect bool
}

// clientConn pairs an accepted socket with its handle. The write mutex keeps
// concurrent broadcasts to the same connection from interleaving bytes.
type clientConn struct {
	id model.ConnID
	nc net.Conn

	mu sync.Mutex
	w  *bufio.Writer
}

// Server owns the listener, the accepted connections and the dispatch loop
type Server struct {
	port       int
	logger     *slog.Logger
	dispatcher *Dispatcher

	listener net.Listener
	events   chan event
	done     chan struct{}

	mu     sync.RWMutex
	conns  map[model.ConnID]*clientConn
	nextID atomic.Uint64
}

// New creates a server that will listen on the given TCP port
func New(port int, logger *slog.Logger) *Server {
	return &Server{
		port:   port,
		logger: logger,
		events: make(chan event, 256),
		done:   make(chan struct{}),
		conns:  make(map[model.ConnID]*clientConn),
	}
}

// AttachDispatcher wires the dispatcher. Separate from New because the room
// registry needs the server as its Sender before the dispatcher can exist.
func (s *Server) AttachDispatcher(d *Dispatcher) {
	s.dispatcher = d
}

// Listen binds the TCP listener. Called before Serve so configuration faults
// surface before any client can connect.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("binding listener: %w", err)
	}
	s.listener = ln
	s.logger.Info("listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listener address; valid after Listen
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept and dispatch loops until ctx is cancelled or a fatal
// error occurs. Every complete line is processed before the next event is
// taken, so moves and commands are handled in arrival order.
func (s *Server) Serve(ctx context.Context) error {
	if s.dispatcher == nil {
		return fmt.Errorf("no dispatcher attached")
	}

	go s.acceptLoop()
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			if ev.disconnect {
				s.handleDisconnect(ev.conn)
				continue
			}
			if err := s.dispatcher.Dispatch(ctx, ev.conn, ev.line); err != nil {
				s.logger.Error("fatal dispatch error", slog.String("error", err.Error()))
				return err
			}
		}
	}
}

// Send delivers one protocol line to a connection, best-effort. A write
// failure is only logged; the connection's reader goroutine surfaces the
// actual disconnect through the normal cleanup path.
func (s *Server) Send(conn model.ConnID, line string) {
	s.mu.RLock()
	c, ok := s.conns[conn]
	s.mu.RUnlock()
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		s.logger.Debug("send failed", slog.Uint64("conn", uint64(conn)))
		return
	}
	if err := c.w.Flush(); err != nil {
		s.logger.Debug("send failed", slog.Uint64("conn", uint64(conn)))
	}
}

func (s *Server) acceptLoop() {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Error("accept failed", slog.String("error", err.Error()))
			}
			return
		}

		id := model.ConnID(s.nextID.Add(1))
		c := &clientConn{id: id, nc: nc, w: bufio.NewWriter(nc)}

		s.mu.Lock()
		s.conns[id] = c
		s.mu.Unlock()

		s.logger.Info("connection accepted",
			slog.Uint64("conn", uint64(id)),
			slog.String("remote", nc.RemoteAddr().String()))

		go s.readLoop(c)
	}
}

// readLoop feeds complete lines from one connection into the event channel.
// EOF and read errors exit the scan loop the same way, so an erroring
// connection goes through the identical disconnect-cleanup path as an
// orderly close.
func (s *Server) readLoop(c *clientConn) {
	scanner := bufio.NewScanner(c.nc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case s.events <- event{conn: c.id, line: line}:
		case <-s.done:
			return
		}
	}

	select {
	case s.events <- event{conn: c.id, disconnect: true}:
	case <-s.done:
	}
}

// handleDisconnect runs full cleanup for a closed or erroring connection:
// forfeit effect if it was a player, removal from viewer sets and the
// pending queue, then session teardown and socket close.
func (s *Server) handleDisconnect(conn model.ConnID) {
	s.dispatcher.Disconnected(conn)

	s.mu.Lock()
	c, ok := s.conns[conn]
	delete(s.conns, conn)
	s.mu.Unlock()

	if ok {
		_ = c.nc.Close()
	}
	s.logger.Info("connection closed", slog.Uint64("conn", uint64(conn)))
}

func (s *Server) teardown() {
	close(s.done)
	_ = s.listener.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.conns {
		_ = c.nc.Close()
		delete(s.conns, id)
	}
}
