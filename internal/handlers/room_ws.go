// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/middleware"
)

const (
	subprotocol  = "cardparty"
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// WSHandler upgrades GET /ws. Each socket gets a fresh connection id; a valid
// auth_token (cookie or ?token=) registers its display name up front.
func WSHandler(gs *GameServer) http.HandlerFunc {
	logger := gs.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != subprotocol {
			c.Close(BadSubprotocolError, "client must speak the cardparty subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := NewConnection(uuid.New(), cancel, gs.RateLimit, gs.RateBurst, logger)
		gs.Hub.Add(conn)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, conn.ID.String())

		hello := Connected{Type: "connected", ConnectionID: conn.ID}
		if name, ok := gs.preRegister(r, conn); ok {
			hello.DisplayName = name
		}
		conn.Write(hello)

		go writePump(ctx, c, conn)
		readErr := readPump(ctx, c, gs, conn)

		cancel()
		gs.Coordinator.Disconnect(conn.ID)
		gs.Hub.Remove(conn.ID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, conn.ID.String(), readErr)
	}
}

// preRegister applies the display name from a session token, if one was presented.
// A bad token is ignored; the client can still register over the socket.
func (gs *GameServer) preRegister(r *http.Request, conn *Connection) (string, bool) {
	if gs.Tokens == nil {
		return "", false
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		token = extractCookieToken(r.Header.Get("Cookie"), authCookieName)
	}
	if token == "" {
		return "", false
	}
	name, err := gs.Tokens.Authenticate(token)
	if err != nil {
		conn.log.Debugf("ignoring session token: %v", err)
		return "", false
	}
	name, err = gs.Coordinator.Register(conn.ID, name)
	if err != nil {
		conn.log.Debugf("token display name rejected: %v", err)
		return "", false
	}
	return name, true
}

// readPump handles inbound frames until the socket fails. Every parsed frame is acked.
// It returns the read error, or nil for a normal close.
func readPump(ctx context.Context, c *websocket.Conn, gs *GameServer, conn *Connection) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			conn.log.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		allowed := conn.limiter.Allow()
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if allowed {
				conn.WriteError("Invalid JSON format")
			}
			continue
		}
		if !allowed {
			conn.Write(Ack{Type: "ack", RequestID: msg.RequestID, Message: "rate limit exceeded"})
			continue
		}

		conn.Write(gs.handleClientMessage(conn, msg))
	}
}

// writePump drains OutChan to the socket and pings every pingInterval.
func writePump(ctx context.Context, c *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	// a failed write or ping ends the read pump too
	defer conn.Cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				conn.log.Warnf("failed to marshal outgoing %T: %v", msg, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				conn.log.Warnf("failed to write to websocket: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				conn.log.Warnf("failed to send ping: %v. Assuming disconnect.", err)
				return
			}
		}
	}
}
