// internal/game/binding.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// Role is how a connection participates in a room.
type Role int

const (
	RolePlayer Role = iota + 1
	RolePending
)

type connState struct {
	displayName string
	rooms       map[string]Role
}

// Binding maps live connections to their display name and room associations.
// It is consulted on disconnect so only the rooms a connection touched are visited.
type Binding struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*connState
}

// NewBinding returns an empty binding table.
func NewBinding() *Binding {
	return &Binding{conns: make(map[uuid.UUID]*connState)}
}

func (b *Binding) stateLocked(connID uuid.UUID) *connState {
	st, ok := b.conns[connID]
	if !ok {
		st = &connState{rooms: make(map[string]Role)}
		b.conns[connID] = st
	}
	return st
}

// Register sets the display name of a connection.
func (b *Binding) Register(connID uuid.UUID, displayName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateLocked(connID).displayName = displayName
}

// DisplayName returns the registered name of a connection.
func (b *Binding) DisplayName(connID uuid.UUID) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.conns[connID]
	if !ok || st.displayName == "" {
		return "", false
	}
	return st.displayName, true
}

// Bind records the connection's role in a room, replacing any previous role.
func (b *Binding) Bind(connID uuid.UUID, roomID string, role Role) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateLocked(connID).rooms[roomID] = role
}

// Unbind forgets the connection's association with a room. An unregistered
// connection left with no rooms is dropped from the table.
func (b *Binding) Unbind(connID uuid.UUID, roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.conns[connID]
	if !ok {
		return
	}
	delete(st.rooms, roomID)
	if len(st.rooms) == 0 && st.displayName == "" {
		delete(b.conns, connID)
	}
}

// RoleIn returns the connection's role in a room.
func (b *Binding) RoleIn(connID uuid.UUID, roomID string) (Role, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.conns[connID]
	if !ok {
		return 0, false
	}
	role, ok := st.rooms[roomID]
	return role, ok
}

// Rooms returns a copy of the connection's room associations.
func (b *Binding) Rooms(connID uuid.UUID) map[string]Role {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]Role)
	if st, ok := b.conns[connID]; ok {
		for id, role := range st.rooms {
			out[id] = role
		}
	}
	return out
}

// Forget drops the connection entirely and returns the rooms it was bound to.
func (b *Binding) Forget(connID uuid.UUID) map[string]Role {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.conns[connID]
	if !ok {
		return nil
	}
	delete(b.conns, connID)
	return st.rooms
}
