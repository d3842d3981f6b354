package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/logging"
)

const (
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	writeWait    = 10 * time.Second
	shutdownWait = 5 * time.Second
)

// Control is the message a client sends to trim the sheet or move the
// rudder. Both are deltas.
type Control struct {
	Sheet  float64 `json:"sheet"`
	Rudder float64 `json:"rudder"`
}

func (c Control) validate() error {
	if math.IsNaN(c.Sheet) || math.IsInf(c.Sheet, 0) || math.IsNaN(c.Rudder) || math.IsInf(c.Rudder, 0) {
		return fmt.Errorf("non-finite control %+v", c)
	}
	return nil
}

// Server exposes the hub on /ws and hands control messages to a
// control.Manual.
type Server struct {
	hub      *Hub
	manual   *control.Manual
	log      *logging.Logger
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, manual *control.Manual, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		hub:    hub,
		manual: manual,
		log:    log,
		upgrader: websocket.Upgrader{
			// local tool; any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"clients": s.hub.Clients()})
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "error", err)
		return
	}
	c := newClient(conn)
	s.hub.add(c)

	go s.writePump(c)
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read failed", "remote", c.remote(), "error", err)
			}
			return
		}

		var ctl Control
		if err := json.Unmarshal(msg, &ctl); err != nil {
			s.log.Warn("bad control message", "remote", c.remote(), "error", err)
			continue
		}
		if err := ctl.validate(); err != nil {
			s.log.Warn("bad control message", "remote", c.remote(), "error", err)
			continue
		}
		s.manual.Nudge(ctl.Sheet, ctl.Rudder)
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug("write failed", "remote", c.remote(), "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ListenAndServe serves until ctx is done, then closes every client and
// shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("telemetry listening", "addr", addr, "endpoint", "/ws")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return logging.Wrap(err, "listen on %s", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
