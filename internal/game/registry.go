// internal/game/registry.go
package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength   = 6
)

// Registry maps room ids to rooms. It owns id allocation.
// It never calls out while holding its lock, so it is safe to use with a room lock held.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// nextID is called with mu held.
	nextID func() string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Registry{
		rooms:  make(map[string]*Room),
		nextID: func() string { return randomRoomID(rng) },
	}
}

// Create allocates a collision-free id and stores a new room with host as its only player.
func (r *Registry) Create(name string, host *Player) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID()
	for r.rooms[id] != nil {
		id = r.nextID()
	}
	room := newRoom(id, name, host)
	r.rooms[id] = room
	return room
}

func randomRoomID(rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(roomIDLength)
	for i := 0; i < roomIDLength; i++ {
		b.WriteByte(roomIDAlphabet[rng.Intn(len(roomIDAlphabet))])
	}
	return b.String()
}

// Get returns the room for id. Ids are matched case-insensitively.
func (r *Registry) Get(id string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[NormalizeRoomID(id)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Destroy removes the room. Called once its player count reaches zero.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

// Rooms returns a snapshot of the stored rooms.
func (r *Registry) Rooms() []*Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Len is the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// NormalizeRoomID is the canonical, upper-case form of a room id.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
