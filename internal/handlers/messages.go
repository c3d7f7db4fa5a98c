// internal/handlers/messages.go
package handlers

import "github.com/google/uuid"

// Inbound message types.
const (
	MsgRegister     = "register"
	MsgCreateRoom   = "createRoom"
	MsgJoinRoom     = "joinRoom"
	MsgApproveJoin  = "approveJoin"
	MsgRejectJoin   = "rejectJoin"
	MsgStartGame    = "startGame"
	MsgSubmitCards  = "submitCards"
	MsgChooseWinner = "chooseWinner"
	MsgLeaveRoom    = "leaveRoom"
)

// ClientMessage is any frame sent by a client. Only the fields used by Type are read.
type ClientMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`

	DisplayName string   `json:"displayName,omitempty"`
	Name        string   `json:"name,omitempty"`
	RoomID      string   `json:"roomId,omitempty"`
	PendingID   string   `json:"pendingId,omitempty"`
	Cards       []string `json:"cards,omitempty"`
	WinnerID    string   `json:"winnerId,omitempty"`
}

// Ack answers exactly one ClientMessage.
type Ack struct {
	Type      string `json:"type"` // always "ack"
	RequestID string `json:"requestId,omitempty"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ErrorFrame reports a frame that could not be handled at all.
type ErrorFrame struct {
	Type    string `json:"type"` // always "error"
	Message string `json:"message"`
}

// Connected is the first frame on every socket.
type Connected struct {
	Type         string    `json:"type"` // always "connected"
	ConnectionID uuid.UUID `json:"connectionId"`
	DisplayName  string    `json:"displayName,omitempty"`
}

type registerData struct {
	DisplayName string `json:"displayName"`
	Token       string `json:"token,omitempty"`
}

type roomData struct {
	RoomID  string `json:"roomId"`
	Pending bool   `json:"pending,omitempty"`
}
