package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// Session is one live render connection. It owns the previous render of
// the connection; requests are rendered one at a time in arrival order.
type Session struct {
	ID string

	conn   *websocket.Conn
	server *Server
	config SessionConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu serializes writes from ReadLoop and WriteLoop.
	writeMu sync.Mutex

	// prev is only touched by ReadLoop.
	prev   *vdom.Element
	seq    atomic.Uint64
	closed atomic.Bool
}

// generateSessionID creates a random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, srv *Server) *Session {
	id := generateSessionID()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:     id,
		conn:   conn,
		server: srv,
		config: srv.config.Session,
		logger: srv.logger.With("session_id", id),
		ctx:    ctx,
		cancel: cancel,
	}
	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})
	return s
}

// ReadLoop reads requests until the connection closes.
func (s *Session) ReadLoop() {
	defer s.Close()
	defer s.setPrev(nil)

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		kind, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.wsError("read")
			}
			return
		}

		var req RenderRequest
		if err := decode(kind, msg, &req); err != nil {
			s.wsError("decode")
			s.reply(kind, &RenderResponse{Error: errorBody(
				errors.New("X001").WithDetail("undecodable message").Wrap(err))})
			continue
		}
		if err := s.reply(kind, s.handle(&req)); err != nil {
			s.logger.Error("write error", "error", err)
			s.wsError("write")
			return
		}
	}
}

// handle renders one request against the previous render. A failed render
// leaves the previous render in place.
func (s *Session) handle(req *RenderRequest) *RenderResponse {
	if req.Reset {
		s.setPrev(nil)
	}
	if req.Markup == "" && req.Template == "" && req.Reset {
		return &RenderResponse{}
	}

	root, err := s.server.render(s.ctx, req, s.prev)
	if err != nil {
		s.logger.Debug("render failed", "error", err)
		return &RenderResponse{Error: errorBody(err)}
	}
	resp := response(root)

	// Deleted nodes are reported once; keeping them would chain every
	// earlier render to the next one.
	vdom.Walk(root, func(n *vdom.Element) bool {
		n.DeleteElements = nil
		return true
	})
	s.setPrev(root)
	return resp
}

// setPrev replaces the previous render, releasing the one it supersedes.
func (s *Session) setPrev(root *vdom.Element) {
	if s.prev != nil && s.prev != root {
		vdom.Release(s.prev)
	}
	s.prev = root
}

// reply numbers resp and writes it in the frame type of the request.
func (s *Session) reply(kind int, resp *RenderResponse) error {
	resp.Seq = s.seq.Add(1)

	var (
		data []byte
		err  error
	)
	if kind == websocket.TextMessage {
		data, err = json.Marshal(resp)
	} else {
		kind = websocket.BinaryMessage
		data, err = msgpack.Marshal(resp)
	}
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(kind, data)
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.wsError("ping")
				s.Close()
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()

	s.writeMu.Lock()
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()
	s.conn.Close()
	s.logger.Debug("session done", "replies", s.seq.Load())
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) wsError(kind string) {
	if s.server.metrics != nil {
		s.server.metrics.WebSocketError(kind)
	}
}

func decode(kind int, msg []byte, v any) error {
	if kind == websocket.TextMessage {
		return json.Unmarshal(msg, v)
	}
	return msgpack.Unmarshal(msg, v)
}
