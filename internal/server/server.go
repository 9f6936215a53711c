// Package server exposes a batch's event stream to an external UI over a
// WebSocket. Each client first receives the retained history, then live
// events in publish order.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/backmassage/lomux/internal/events"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 256
	shutdownGrace  = 2 * time.Second
	maxClientFrame = 512
)

// Server streams events from a Bus to WebSocket clients.
type Server struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	logf     func(format string, args ...any)

	closing   chan struct{}
	closeOnce sync.Once
}

// New returns a Server publishing bus. logf receives connection errors and
// may be nil.
func New(bus *events.Bus, logf func(string, ...any)) *Server {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Server{
		bus:     bus,
		logf:    logf,
		closing: make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes:
//
//	GET /events          WebSocket: history, then live events (JSON text frames)
//	GET /events.json     retained events as a JSON array
//
// Both accept ?since=<seq> to skip events already seen.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleWebSocket)
	mux.HandleFunc("/events.json", s.handleSnapshot)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled. It returns the bound
// address on ready (useful with ":0") before blocking.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	// Shutdown does not track hijacked connections; tell them directly.
	srv.RegisterOnShutdown(s.Close)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if ready != nil {
		ready(ln.Addr())
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close ends every open WebSocket stream with a normal closure frame.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func sinceParam(r *http.Request) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	evs := s.bus.Since(sinceParam(r))
	if evs == nil {
		evs = []events.Event{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(evs)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	since := sinceParam(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	backlog, ch, cancel := s.bus.Subscribe(clientBuffer)
	defer cancel()

	// Detect disconnection; clients never send anything we need.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxClientFrame)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, e := range backlog {
		if e.Seq <= since {
			continue
		}
		if err := s.write(conn, e); err != nil {
			return
		}
	}

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				// Dropped as a slow consumer; the client reconnects with ?since.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "lagging"),
					time.Now().Add(writeWait))
				return
			}
			if err := s.write(conn, e); err != nil {
				return
			}
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutting down"),
				time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, e events.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(e); err != nil {
		s.logf("WebSocket write failed: %v", err)
		return err
	}
	return nil
}
