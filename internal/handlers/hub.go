// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/game"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const outChanSize = 32

// Connection is one live websocket. Everything sent to the client goes through OutChan,
// drained by the connection's write pump.
type Connection struct {
	ID      uuid.UUID
	Cancel  func()
	OutChan chan any

	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewConnection builds a connection with a token-bucket limiter for inbound frames.
func NewConnection(id uuid.UUID, cancel func(), limit rate.Limit, burst int, logger *logrus.Logger) *Connection {
	return &Connection{
		ID:      id,
		Cancel:  cancel,
		OutChan: make(chan any, outChanSize),
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.WithField("conn", id),
	}
}

// Write pushes a message onto OutChan without blocking. A full channel drops the message.
func (conn *Connection) Write(msg any) {
	select {
	case conn.OutChan <- msg:
	default:
		conn.log.Warnf("OutChan full, dropped %T", msg)
	}
}

// WriteError sends a bare error frame, used when a request cannot be parsed far enough to ack.
func (conn *Connection) WriteError(msg string) {
	conn.Write(ErrorFrame{Type: "error", Message: msg})
}

// Hub tracks live connections and the per-room recipient groups. It implements game.Notifier.
// Sends never block: they only enqueue on a connection's OutChan.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Connection
	groups map[string]map[uuid.UUID]struct{}
	log    *logrus.Logger
}

var _ game.Notifier = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		conns:  make(map[uuid.UUID]*Connection),
		groups: make(map[string]map[uuid.UUID]struct{}),
		log:    logger,
	}
}

// Add registers a live connection.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID] = conn
}

// Remove forgets a connection and drops it from every group.
func (h *Hub) Remove(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
	for _, members := range h.groups {
		delete(members, connID)
	}
}

// Len is the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// SendTo delivers an event to one connection if it is still live.
func (h *Hub) SendTo(connID uuid.UUID, ev game.Event) {
	h.mu.RLock()
	conn, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		h.log.Debugf("dropping %s for departed connection %s", ev.Type, connID)
		return
	}
	conn.Write(ev)
}

// Broadcast delivers an event to every member of the room's group.
func (h *Hub) Broadcast(roomID string, ev game.Event) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.groups[roomID]))
	for id := range h.groups[roomID] {
		if conn, ok := h.conns[id]; ok {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		conn.Write(ev)
	}
}

func (h *Hub) JoinGroup(roomID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[roomID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.groups[roomID] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) LeaveGroup(roomID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups[roomID], connID)
}

func (h *Hub) CloseGroup(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, roomID)
}

// groupSize is the number of connections receiving a room's broadcasts.
func (h *Hub) groupSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[roomID])
}
