// internal/handlers/game_server.go
package handlers

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/auth"
	"github.com/jason-s-yu/cardparty/internal/game"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// GameServer ties the websocket transport to the game coordinator.
type GameServer struct {
	Coordinator *game.Coordinator
	Hub         *Hub
	Tokens      *auth.Issuer
	Logger      *logrus.Logger

	RateLimit rate.Limit
	RateBurst int
}

// NewGameServer wires a coordinator to its hub. tokens may be nil, in which case
// register acks carry no token.
func NewGameServer(coord *game.Coordinator, hub *Hub, tokens *auth.Issuer, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Coordinator: coord,
		Hub:         hub,
		Tokens:      tokens,
		Logger:      logger,
		RateLimit:   rate.Limit(5),
		RateBurst:   10,
	}
}

// handleClientMessage runs one inbound request against the coordinator and builds its ack.
func (gs *GameServer) handleClientMessage(conn *Connection, msg ClientMessage) Ack {
	coord := gs.Coordinator
	var (
		data any
		err  error
	)

	switch msg.Type {
	case MsgRegister:
		data, err = gs.register(conn, msg.DisplayName)
	case MsgCreateRoom:
		var room *game.Room
		if room, err = coord.CreateRoom(conn.ID, msg.Name); err == nil {
			data = roomData{RoomID: room.ID}
		}
	case MsgJoinRoom:
		if err = coord.JoinRoom(msg.RoomID, conn.ID); err == nil {
			data = roomData{RoomID: game.NormalizeRoomID(msg.RoomID), Pending: true}
		}
	case MsgApproveJoin:
		var pendingID uuid.UUID
		if pendingID, err = parseID(msg.PendingID, game.ErrPendingNotFound); err == nil {
			err = coord.Approve(msg.RoomID, conn.ID, pendingID)
		}
	case MsgRejectJoin:
		var pendingID uuid.UUID
		if pendingID, err = parseID(msg.PendingID, game.ErrPendingNotFound); err == nil {
			err = coord.Reject(msg.RoomID, conn.ID, pendingID)
		}
	case MsgStartGame:
		err = coord.StartGame(msg.RoomID, conn.ID)
	case MsgSubmitCards:
		err = coord.SubmitCards(msg.RoomID, conn.ID, msg.Cards)
	case MsgChooseWinner:
		var winnerID uuid.UUID
		if winnerID, err = parseID(msg.WinnerID, game.ErrInvalidWinner); err == nil {
			err = coord.ChooseWinner(msg.RoomID, conn.ID, winnerID)
		}
	case MsgLeaveRoom:
		err = coord.LeaveRoom(msg.RoomID, conn.ID)
	default:
		err = fmt.Errorf("unknown message type: %s", msg.Type)
	}

	ack := Ack{Type: "ack", RequestID: msg.RequestID, Success: err == nil, Data: data}
	if err != nil {
		ack.Message = err.Error()
		var ge *game.Error
		if errors.As(err, &ge) {
			ack.Kind = ge.Kind.String()
		}
		conn.log.WithField("type", msg.Type).Debugf("request failed: %v", err)
	}
	return ack
}

func (gs *GameServer) register(conn *Connection, displayName string) (registerData, error) {
	name, err := gs.Coordinator.Register(conn.ID, displayName)
	if err != nil {
		return registerData{}, err
	}
	data := registerData{DisplayName: name}
	if gs.Tokens != nil {
		token, err := gs.Tokens.CreateToken(name)
		if err != nil {
			conn.log.Warnf("failed to create token: %v", err)
			return data, nil
		}
		data.Token = token
	}
	return data, nil
}

// parseID reads a client-supplied uuid. A malformed id is reported as notFound so
// the request still gets an ordinary ack.
func parseID(raw string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
