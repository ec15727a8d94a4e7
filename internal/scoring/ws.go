package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"example.com/mastermind/internal/httpapi"
	"github.com/gorilla/websocket"
)

const (
	wsSendBuffer   = 64
	wsPingInterval = 25 * time.Second
	wsWriteWait    = 10 * time.Second
	wsReadLimit    = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	// done is closed when the writer loop exits; nothing drains send after that.
	done chan struct{}

	closeOnce sync.Once
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, wsSendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue hands msg to the writer loop. It reports false once the writer
// has gone away.
func (c *ClientConn) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

func (c *ClientConn) writeLoop() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		close(c.done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWS scores a stream of guesses over one connection.
// Token: "Authorization: Bearer ..." or ?token=..., required when a verifier is set.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	clientID := ""
	if s.verifier != nil {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := s.verifier.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		clientID = claims.ClientID
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(wsReadLimit)

	cc := newClientConn(ws)
	s.log.Debug("ws connected", "client", clientID, "remote", r.RemoteAddr)

	go cc.writeLoop()

	ctx := r.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		if !cc.enqueue(s.reply(ctx, data)) {
			break
		}
	}

	cc.Close()
	s.log.Debug("ws disconnected", "client", clientID)
}

func (s *Server) reply(ctx context.Context, data []byte) []byte {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.metrics.RecordWSMessage("invalid")
		return envelope("error", httpapi.ErrorResponse{Code: "bad_json", Message: "invalid json"})
	}
	s.metrics.RecordWSMessage(env.Type)

	switch env.Type {
	case "score":
		var p ScoreRequest
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Secret == nil || p.Guess == nil {
			return envelope("error", httpapi.ErrorResponse{Code: "bad_input", Message: "secret and guess must be arrays of integers"})
		}
		return envelope("result", s.svc.Score(ctx, p.Secret, p.Guess))
	default:
		return envelope("error", httpapi.ErrorResponse{Code: "unknown_type", Message: "unknown message type"})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func envelope(typ string, payload any) []byte {
	b, _ := json.Marshal(Envelope{Type: typ, Payload: mustJSON(payload)})
	return b
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
