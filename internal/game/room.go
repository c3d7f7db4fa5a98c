// internal/game/room.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/deck"
)

// Phase is the round state of a room.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDealing
	PhaseRoundOpen
	PhaseJudging
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDealing:
		return "dealing"
	case PhaseRoundOpen:
		return "round_open"
	case PhaseJudging:
		return "judging"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Player is an approved member of a room. ID is the player's connection id.
type Player struct {
	ID          uuid.UUID
	DisplayName string
	Hand        []string
	Score       int
}

// PendingRequest is a join attempt awaiting the host's decision.
type PendingRequest struct {
	ID          uuid.UUID
	DisplayName string
}

// Submission is one player's cards for the current round.
// Designator is what the judge sees instead of the player id.
type Submission struct {
	PlayerID    uuid.UUID
	DisplayName string
	Cards       []string
	Designator  uuid.UUID
}

// Room holds the full state of one game session.
// Every field is guarded by Mu; helpers suffixed with Locked or documented as
// "lock held" assume the caller owns it.
type Room struct {
	ID     string
	Name   string
	HostID uuid.UUID

	// Players is in join/approval order, which is also the judge rotation order.
	Players []*Player
	Pending []*PendingRequest

	JudgeIndex    int
	CurrentPrompt *deck.PromptCard
	Submissions   []*Submission
	Phase         Phase
	RoundNumber   int

	roundDeadline  time.Time
	roundTimer     *time.Timer
	judgeTimer     *time.Timer
	nextRoundTimer *time.Timer

	// closed is set once the room is removed from the registry; operations on a
	// closed room behave as if it did not exist.
	closed bool

	Mu sync.Mutex
}

func newRoom(id, name string, host *Player) *Room {
	return &Room{
		ID:      id,
		Name:    name,
		HostID:  host.ID,
		Players: []*Player{host},
		Phase:   PhaseIdle,
	}
}

func (room *Room) playerIndex(id uuid.UUID) int {
	for i, p := range room.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (room *Room) player(id uuid.UUID) *Player {
	if i := room.playerIndex(id); i >= 0 {
		return room.Players[i]
	}
	return nil
}

func (room *Room) pendingIndex(id uuid.UUID) int {
	for i, p := range room.Pending {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// judge returns the player at JudgeIndex, or nil for an empty room.
func (room *Room) judge() *Player {
	if len(room.Players) == 0 {
		return nil
	}
	return room.Players[room.JudgeIndex]
}

func (room *Room) isJudge(id uuid.UUID) bool {
	j := room.judge()
	return j != nil && j.ID == id
}

// inRound reports whether a round is currently being played or judged.
func (room *Room) inRound() bool {
	return room.Phase == PhaseRoundOpen || room.Phase == PhaseJudging
}

func (room *Room) submissionFor(playerID uuid.UUID) *Submission {
	for _, s := range room.Submissions {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// findSubmission resolves a judge's choice by designator first, then by player id.
func (room *Room) findSubmission(id uuid.UUID) *Submission {
	for _, s := range room.Submissions {
		if s.Designator == id {
			return s
		}
	}
	return room.submissionFor(id)
}

func (room *Room) dropSubmission(playerID uuid.UUID) *Submission {
	for i, s := range room.Submissions {
		if s.PlayerID == playerID {
			room.Submissions = append(room.Submissions[:i:i], room.Submissions[i+1:]...)
			return s
		}
	}
	return nil
}

func (room *Room) stopRoundTimer() {
	if room.roundTimer != nil {
		room.roundTimer.Stop()
		room.roundTimer = nil
	}
}

func (room *Room) stopJudgeTimer() {
	if room.judgeTimer != nil {
		room.judgeTimer.Stop()
		room.judgeTimer = nil
	}
}

// stopTimers cancels every scheduled callback owned by the room.
func (room *Room) stopTimers() {
	room.stopRoundTimer()
	room.stopJudgeTimer()
	if room.nextRoundTimer != nil {
		room.nextRoundTimer.Stop()
		room.nextRoundTimer = nil
	}
}

func (room *Room) playerViews() []PlayerView {
	views := make([]PlayerView, 0, len(room.Players))
	judgeActive := room.Phase != PhaseIdle
	for i, p := range room.Players {
		views = append(views, PlayerView{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			IsHost:      p.ID == room.HostID,
			IsJudge:     judgeActive && i == room.JudgeIndex,
			Score:       p.Score,
		})
	}
	return views
}

func (room *Room) pendingViews() []PendingView {
	views := make([]PendingView, 0, len(room.Pending))
	for _, p := range room.Pending {
		views = append(views, PendingView{ID: p.ID, DisplayName: p.DisplayName})
	}
	return views
}

func (room *Room) roomUpdate() Event {
	host := room.HostID
	return Event{
		Type:    EventRoomUpdate,
		RoomID:  room.ID,
		HostID:  &host,
		Players: room.playerViews(),
	}
}

func (room *Room) pendingUpdate() Event {
	return Event{
		Type:    EventPendingUpdate,
		RoomID:  room.ID,
		Pending: room.pendingViews(),
	}
}

// RoomSummary is a read-only snapshot used for listings.
type RoomSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Host    string `json:"host"`
	Players int    `json:"players"`
	Pending int    `json:"pending"`
	Phase   string `json:"phase"`
	Round   int    `json:"round"`
}

// Summary takes the room lock and returns a snapshot.
func (room *Room) Summary() RoomSummary {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	s := RoomSummary{
		ID:      room.ID,
		Name:    room.Name,
		Players: len(room.Players),
		Pending: len(room.Pending),
		Phase:   room.Phase.String(),
		Round:   room.RoundNumber,
	}
	if h := room.player(room.HostID); h != nil {
		s.Host = h.DisplayName
	}
	return s
}

// removeCards takes one occurrence of every card out of hand.
// It reports false, leaving hand untouched, if any card is missing.
func removeCards(hand, cards []string) ([]string, bool) {
	remaining := make([]string, len(hand))
	copy(remaining, hand)
	for _, card := range cards {
		idx := -1
		for i, h := range remaining {
			if h == card {
				idx = i
				break
			}
		}
		if idx < 0 {
			return hand, false
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return remaining, true
}
