// internal/models/round.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundRecord captures a resolved round for the history queue and the round_results archive.
type RoundRecord struct {
	RoomID      string    `json:"room_id"`
	RoomName    string    `json:"room_name"`
	Round       int       `json:"round"`
	Prompt      string    `json:"prompt"`
	Pick        int       `json:"pick"`
	JudgeName   string    `json:"judge_name"`
	WinnerID    uuid.UUID `json:"winner_id"`
	WinnerName  string    `json:"winner_name"`
	Cards       []string  `json:"cards"`
	Timeout     bool      `json:"timeout"`
	Submissions int       `json:"submissions"`
	ResolvedAt  time.Time `json:"resolved_at"`
}
