package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/hailam/chesscore/internal/game"
)

// Websocket message types.
const (
	msgState = "state"
	msgMove  = "move"
	msgThink = "think"
	msgLegal = "legal"
	msgError = "error"
)

type wsMessage struct {
	Type string `json:"type"`
	Move string `json:"move,omitempty"`
}

type wsReply struct {
	Type   string         `json:"type"`
	Game   *game.Snapshot `json:"game,omitempty"`
	Result *moveResponse  `json:"result,omitempty"`
	Moves  []string       `json:"moves,omitempty"`
	Error  string         `json:"error,omitempty"`
	Status int            `json:"status,omitempty"`
}

// upgradeGame rejects plain HTTP requests and unknown games before the
// connection is upgraded.
func (s *Server) upgradeGame(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := s.session(c); err != nil {
		return err
	}
	return c.Next()
}

// serveGame runs one control connection for a game session. Every text
// message gets exactly one reply.
func (s *Server) serveGame(c *websocket.Conn) {
	id := c.Params("id")
	defer c.Close()

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg wsMessage
		reply := wsReply{Type: msgError, Error: "invalid message", Status: fiber.StatusBadRequest}
		if err := json.Unmarshal(data, &msg); err == nil {
			reply = s.dispatch(context.Background(), id, msg)
		}
		if err := c.WriteJSON(reply); err != nil {
			log.Printf("websocket %s: write: %v", id, err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, id string, msg wsMessage) wsReply {
	sess, err := s.games.Get(id)
	if err != nil {
		return errorReply(err)
	}

	switch msg.Type {
	case msgState:
		snap := sess.Snapshot()
		return wsReply{Type: msgState, Game: &snap}
	case msgLegal:
		return wsReply{Type: msgLegal, Moves: sess.LegalMoves()}
	case msgMove:
		if msg.Move == "" {
			return errorReply(fiber.NewError(fiber.StatusBadRequest, "move is required"))
		}
		res, err := applyMove(sess, msg.Move)
		if err != nil {
			return errorReply(err)
		}
		return wsReply{Type: msgMove, Result: &res}
	case msgThink:
		res, err := s.runThink(ctx, sess)
		if err != nil {
			return errorReply(err)
		}
		return wsReply{Type: msgThink, Result: &res}
	}
	return errorReply(fiber.NewError(fiber.StatusBadRequest, "unknown message type: "+msg.Type))
}

func errorReply(err error) wsReply {
	return wsReply{Type: msgError, Error: err.Error(), Status: statusFor(err)}
}
