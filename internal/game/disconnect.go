// internal/game/disconnect.go
package game

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

const roomClosedMessage = "The room was closed"

// Disconnect removes a connection from every room it is bound to, as a player or as
// a pending requester. Rooms left without players are destroyed.
func (c *Coordinator) Disconnect(connID uuid.UUID) {
	for roomID := range c.Bindings.Forget(connID) {
		c.leave(roomID, connID)
	}
}

// LeaveRoom removes the connection from one room without dropping the connection.
func (c *Coordinator) LeaveRoom(roomID string, connID uuid.UUID) error {
	room, err := c.Registry.Get(roomID)
	if err != nil {
		return err
	}
	if _, ok := c.Bindings.RoleIn(connID, room.ID); !ok {
		return ErrPlayerNotInRoom
	}
	c.Bindings.Unbind(connID, room.ID)
	c.leave(room.ID, connID)
	return nil
}

func (c *Coordinator) leave(roomID string, connID uuid.UUID) {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return
	}
	defer room.Mu.Unlock()

	// Approve may have bound the connection again after Disconnect forgot it.
	defer c.Bindings.Unbind(connID, room.ID)

	if idx := room.playerIndex(connID); idx >= 0 {
		c.removePlayerLocked(room, idx)
		if room.closed {
			return
		}
	}
	if idx := room.pendingIndex(connID); idx >= 0 {
		room.Pending = append(room.Pending[:idx:idx], room.Pending[idx+1:]...)
		c.notifier.SendTo(room.HostID, room.pendingUpdate())
	}
}

// removePlayerLocked takes a player out of the room, keeps JudgeIndex in range and
// repairs the current round. Lock held.
func (c *Coordinator) removePlayerLocked(room *Room, idx int) {
	leaving := room.Players[idx]
	wasJudge := room.inRound() && idx == room.JudgeIndex

	room.Players = slices.Delete(room.Players, idx, idx+1)
	room.dropSubmission(leaving.ID)
	c.notifier.LeaveGroup(room.ID, leaving.ID)
	c.roomLog(room).Infof("%s (%s) left", leaving.DisplayName, leaving.ID)

	if len(room.Players) == 0 {
		c.destroyLocked(room)
		return
	}

	// A departure before the judge shifts everyone down one slot; the judge stays the judge.
	if idx < room.JudgeIndex {
		room.JudgeIndex--
	} else if room.JudgeIndex >= len(room.Players) {
		room.JudgeIndex = 0
	}

	if leaving.ID == room.HostID {
		room.HostID = room.Players[0].ID
		c.notifier.Broadcast(room.ID, Event{
			Type:    EventMessage,
			RoomID:  room.ID,
			Message: fmt.Sprintf("%s is now the host", room.Players[0].DisplayName),
		})
		if len(room.Pending) > 0 {
			c.notifier.SendTo(room.HostID, room.pendingUpdate())
		}
	}
	c.recoverRoundLocked(room, wasJudge)
	c.notifier.Broadcast(room.ID, room.roomUpdate())
}

// recoverRoundLocked re-evaluates the round after a departure. Lock held.
func (c *Coordinator) recoverRoundLocked(room *Room, judgeLeft bool) {
	if room.Phase == PhaseIdle {
		return
	}
	if len(room.Players) < c.settings.MinPlayers {
		c.stopGameLocked(room, tooFewPlayersMessage(c.settings.MinPlayers))
		return
	}
	switch {
	case judgeLeft:
		c.abortRoundLocked(room, "The judge left. A new round begins.")
	case room.Phase == PhaseRoundOpen:
		c.checkAllSubmittedLocked(room)
	case room.Phase == PhaseJudging && len(room.Submissions) == 0:
		c.abortRoundLocked(room, "Every submission was withdrawn. A new round begins.")
	case room.Phase == PhaseJudging:
		// the judge's list may include the departed player's submission
		c.sendSubmissionsToJudge(room)
	}
}

// destroyLocked closes an empty room and releases everything bound to it. Lock held.
func (c *Coordinator) destroyLocked(room *Room) {
	room.closed = true
	room.stopTimers()
	room.Phase = PhaseIdle
	c.Registry.Destroy(room.ID)

	for _, req := range room.Pending {
		c.Bindings.Unbind(req.ID, room.ID)
		c.notifier.SendTo(req.ID, Event{Type: EventJoinRejected, RoomID: room.ID, Message: roomClosedMessage})
	}
	room.Pending = nil
	c.notifier.CloseGroup(room.ID)
	c.roomLog(room).Info("room is empty, destroyed")
}
