// internal/game/events.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/deck"
)

// EventType names an outbound server notification.
type EventType string

const (
	EventJoinApproved     EventType = "joinApproved"
	EventJoinRejected     EventType = "joinRejected"
	EventRoomUpdate       EventType = "roomUpdate"
	EventPendingUpdate    EventType = "pendingUpdate"
	EventNewRound         EventType = "newRound"
	EventChooseWinner     EventType = "chooseWinner"     // judge only
	EventRoundWinner      EventType = "roundWinner"      // whole room
	EventSubmissionUpdate EventType = "submissionUpdate" // progress, no card content
	EventMessage          EventType = "message"
)

// PlayerView is the public projection of a Player. Hands are never included.
type PlayerView struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	IsHost      bool      `json:"isHost"`
	IsJudge     bool      `json:"isJudge"`
	Score       int       `json:"score"`
}

// PendingView is a join request as shown to the host.
type PendingView struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
}

// RoundView is the private per-player view sent at the start of a round.
type RoundView struct {
	Number   int             `json:"number"`
	Prompt   deck.PromptCard `json:"prompt"`
	Hand     []string        `json:"hand"`
	IsJudge  bool            `json:"isJudge"`
	Duration int             `json:"duration"` // seconds
}

// AnonymousSubmission is what the judge sees. ID is a per-round designator, not a player id.
type AnonymousSubmission struct {
	ID    uuid.UUID `json:"id"`
	Cards []string  `json:"cards"`
}

// WinnerView announces the outcome of a round.
type WinnerView struct {
	PlayerID    uuid.UUID       `json:"playerId"`
	DisplayName string          `json:"displayName"`
	Cards       []string        `json:"cards"`
	Prompt      deck.PromptCard `json:"prompt"`
	Timeout     bool            `json:"timeout"`
}

// Event is a server push. Only the fields relevant to Type are set.
type Event struct {
	Type    EventType `json:"type"`
	RoomID  string    `json:"roomId,omitempty"`
	Message string    `json:"message,omitempty"`

	HostID  *uuid.UUID    `json:"hostId,omitempty"`
	Players []PlayerView  `json:"players,omitempty"`
	Pending []PendingView `json:"pending,omitzero"` // an empty, non-nil list is still sent

	Round       *RoundView            `json:"round,omitempty"`
	Submissions []AnonymousSubmission `json:"submissions,omitempty"`
	Winner      *WinnerView           `json:"winner,omitempty"`

	Count    int `json:"count,omitempty"`
	Required int `json:"required,omitempty"`
}

// Notifier delivers events to connections and to per-room recipient groups.
// Implementations must not block; they are called with the room lock held.
type Notifier interface {
	SendTo(connID uuid.UUID, ev Event)
	Broadcast(roomID string, ev Event)
	JoinGroup(roomID string, connID uuid.UUID)
	LeaveGroup(roomID string, connID uuid.UUID)
	CloseGroup(roomID string)
}
