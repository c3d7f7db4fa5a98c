// internal/game/admission.go
package game

import (
	"time"

	"github.com/google/uuid"
)

const rejectMessage = "Your request to join was rejected by the host"

// JoinRoom queues the connection for host approval using its registered display name.
func (c *Coordinator) JoinRoom(roomID string, connID uuid.UUID) error {
	name, ok := c.Bindings.DisplayName(connID)
	if !ok {
		return ErrNotRegistered
	}
	return c.RequestJoin(roomID, connID, name)
}

// RequestJoin appends a pending request and sends the host the updated pending list.
func (c *Coordinator) RequestJoin(roomID string, connID uuid.UUID, displayName string) error {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if room.playerIndex(connID) >= 0 || room.pendingIndex(connID) >= 0 {
		return ErrAlreadyJoined
	}
	room.Pending = append(room.Pending, &PendingRequest{ID: connID, DisplayName: displayName})
	c.Bindings.Bind(connID, room.ID, RolePending)
	c.notifier.SendTo(room.HostID, room.pendingUpdate())
	c.roomLog(room).Infof("%s (%s) is waiting for approval", displayName, connID)
	return nil
}

// Approve moves a pending request into the player list. Only the host may approve.
func (c *Coordinator) Approve(roomID string, requesterID, pendingID uuid.UUID) error {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if requesterID != room.HostID {
		return ErrNotHost
	}
	idx := room.pendingIndex(pendingID)
	if idx < 0 {
		return ErrPendingNotFound
	}
	req := room.Pending[idx]
	room.Pending = append(room.Pending[:idx:idx], room.Pending[idx+1:]...)

	p := &Player{ID: req.ID, DisplayName: req.DisplayName}
	room.Players = append(room.Players, p)
	c.Bindings.Bind(p.ID, room.ID, RolePlayer)
	c.notifier.JoinGroup(room.ID, p.ID)
	c.notifier.SendTo(p.ID, Event{Type: EventJoinApproved, RoomID: room.ID})

	// A player approved mid-game gets a hand right away and, while cards are
	// still being collected, the current prompt with whatever time is left.
	if room.Phase != PhaseIdle {
		c.fillHand(p)
		if room.Phase == PhaseRoundOpen {
			c.sendRoundView(room, p, time.Until(room.roundDeadline))
		}
	}

	c.notifier.Broadcast(room.ID, room.roomUpdate())
	c.notifier.SendTo(room.HostID, room.pendingUpdate())
	c.roomLog(room).Infof("%s (%s) approved", p.DisplayName, p.ID)
	return nil
}

// Reject drops a pending request and tells the requester why. Players and round state are untouched.
func (c *Coordinator) Reject(roomID string, requesterID, pendingID uuid.UUID) error {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if requesterID != room.HostID {
		return ErrNotHost
	}
	idx := room.pendingIndex(pendingID)
	if idx < 0 {
		return ErrPendingNotFound
	}
	req := room.Pending[idx]
	room.Pending = append(room.Pending[:idx:idx], room.Pending[idx+1:]...)
	c.Bindings.Unbind(req.ID, room.ID)

	c.notifier.SendTo(req.ID, Event{Type: EventJoinRejected, RoomID: room.ID, Message: rejectMessage})
	c.notifier.SendTo(room.HostID, room.pendingUpdate())
	c.roomLog(room).Infof("%s (%s) rejected", req.DisplayName, req.ID)
	return nil
}
