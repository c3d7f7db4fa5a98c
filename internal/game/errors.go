// internal/game/errors.go
package game

import "errors"

// Kind classifies a game error for the caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "unknown"
	}
}

// Error is a recoverable, caller-facing failure of a room operation.
// None of them are fatal to the room or the process.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf returns the Kind of err, or KindUnknown if err is not a game error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

var (
	ErrRoomNotFound      = &Error{KindNotFound, "room not found"}
	ErrPendingNotFound   = &Error{KindNotFound, "user not found in the pending list"}
	ErrPlayerNotInRoom   = &Error{KindNotFound, "player not found in the room"}
	ErrInvalidWinner     = &Error{KindNotFound, "the chosen winner has no submission this round"}
	ErrNotHost           = &Error{KindUnauthorized, "only the host can do that"}
	ErrNotJudge          = &Error{KindUnauthorized, "only the judge can choose the winner"}
	ErrNotRegistered     = &Error{KindUnauthorized, "register a display name first"}
	ErrJudgeCannotSubmit = &Error{KindInvalidState, "the judge cannot play cards"}
	ErrAlreadySubmitted  = &Error{KindInvalidState, "you already played cards this round"}
	ErrWrongCardCount    = &Error{KindInvalidState, "wrong number of cards for this prompt"}
	ErrCardNotInHand     = &Error{KindInvalidState, "card not found in your hand"}
	ErrTooFewPlayers     = &Error{KindInvalidState, "minimum number of players not reached (minimum 3)"}
	ErrGameInProgress    = &Error{KindInvalidState, "the game is already running"}
	ErrRoundNotOpen      = &Error{KindInvalidState, "no round is accepting cards right now"}
	ErrNotJudging        = &Error{KindInvalidState, "the round is not waiting for a winner"}
	ErrAlreadyJoined     = &Error{KindInvalidState, "already in the room or waiting for approval"}
	ErrInvalidName       = &Error{KindInvalidState, "display name must be between 1 and 32 characters"}
)
