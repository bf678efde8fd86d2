package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kestrelterm/vt48"
	"github.com/kestrelterm/vt48/cli"
)

// snapshotFrame is one wire message sent to a connected viewer: a full
// vt48.Snapshot of the screen's whole addressable range (retained
// history plus the live grid), tagged with the screen's session
// identifier.
type snapshotFrame struct {
	SessionID string        `json:"sessionId"`
	Snapshot  vt48.Snapshot `json:"snapshot"`
}

// snapshotServer publishes a terminal's screen snapshots to any number
// of connected WebSocket viewers, pushing a new frame to each of them on
// a fixed 100 ms interval.
type snapshotServer struct {
	term *cli.Terminal

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	http *http.Server
	stop chan struct{}
}

func newSnapshotServer(term *cli.Terminal) *snapshotServer {
	return &snapshotServer{
		term: term,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*websocket.Conn]struct{}),
		stop:  make(chan struct{}),
	}
}

// Start begins listening at addr and starts the broadcast loop that
// pushes a frame to every connection a few times a second.
func (s *snapshotServer) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleWebSocket)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.http = &http.Server{Handler: mux}
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("vtdemo: snapshot server: %v", err)
		}
	}()

	go s.broadcastLoop()
	return nil
}

// Stop closes the HTTP server and every open connection.
func (s *snapshotServer) Stop() {
	if s.http == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.http.Shutdown(ctx)

	close(s.stop)

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
}

func (s *snapshotServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("vtdemo: websocket upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	s.sendFrame(conn)

	go func() {
		defer s.removeConn(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *snapshotServer) removeConn(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// broadcastLoop pushes a fresh snapshot to every connected viewer on a
// fixed interval, until Stop closes s.stop. A timer is simpler than
// wiring a change-notification hook through vt48.Screen, and cheap
// enough for a demo binary.
func (s *snapshotServer) broadcastLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		conns := make([]*websocket.Conn, 0, len(s.conns))
		for conn := range s.conns {
			conns = append(conns, conn)
		}
		s.mu.Unlock()

		for _, conn := range conns {
			s.sendFrame(conn)
		}
	}
}

func (s *snapshotServer) sendFrame(conn *websocket.Conn) {
	screen := s.term.Screen()
	extent := screen.Extent()
	snap := screen.Snapshot(0, extent)

	frame := snapshotFrame{SessionID: screen.ID, Snapshot: snap}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.removeConn(conn)
	}
}
