package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

type createRequest struct {
	FEN        string `json:"fen"`
	White      string `json:"white"`
	Black      string `json:"black"`
	PlayerOne  string `json:"player_one"`
	Difficulty string `json:"difficulty"`
	Depth      int    `json:"depth"`
	MoveTimeMs int    `json:"movetime_ms"`
}

type moveRequest struct {
	Move string `json:"move"`
}

type moveResponse struct {
	Move     string        `json:"move"`
	UCI      string        `json:"uci"`
	Score    int           `json:"score"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	FromBook bool          `json:"from_book"`
	Applied  bool          `json:"applied"`
	Game     game.Snapshot `json:"game"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) session(c *fiber.Ctx) (*game.Session, error) {
	return s.games.Get(c.Params("id"))
}

func (s *Server) listGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"games": s.games.IDs()})
}

func (s *Server) createGame(c *fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	white, err := game.ParsePlayerType(req.White)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	black, err := game.ParsePlayerType(req.Black)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	playerOne := board.White
	switch req.PlayerOne {
	case "", "white", "White":
	case "black", "Black":
		playerOne = board.Black
	default:
		return fiber.NewError(fiber.StatusBadRequest, "player_one must be white or black")
	}

	limits := s.config.Limits
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		limits = d.Limits()
	}
	if req.Depth > 0 {
		limits.Depth = engine.ClampDepth(req.Depth)
	}
	if req.MoveTimeMs > 0 {
		limits.MoveTime = time.Duration(req.MoveTimeMs) * time.Millisecond
	}

	sess, err := s.games.Create(game.Config{
		FEN:       req.FEN,
		White:     white,
		Black:     black,
		PlayerOne: playerOne,
		Limits:    limits,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(sess.Snapshot())
}

func (s *Server) getGame(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

func (s *Server) deleteGame(c *fiber.Ctx) error {
	if err := s.games.Remove(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) legalMoves(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"moves": sess.LegalMoves()})
}

func (s *Server) playMove(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil || req.Move == "" {
		return fiber.NewError(fiber.StatusBadRequest, "body must be {\"move\": \"...\"}")
	}

	res, err := applyMove(sess, req.Move)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) think(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	res, err := s.runThink(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func applyMove(sess *game.Session, text string) (moveResponse, error) {
	res, err := sess.Play(text)
	if err != nil {
		return moveResponse{}, err
	}
	return newMoveResponse(sess, res), nil
}

func (s *Server) runThink(parent context.Context, sess *game.Session) (moveResponse, error) {
	ctx, cancel := context.WithTimeout(parent, s.config.ThinkTimeout)
	defer cancel()

	res, err := sess.Think(ctx)
	if err != nil {
		return moveResponse{}, err
	}
	return newMoveResponse(sess, res), nil
}

func newMoveResponse(sess *game.Session, res game.MoveResult) moveResponse {
	return moveResponse{
		Move:     res.Notation,
		UCI:      res.Move.String(),
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		FromBook: res.FromBook,
		Applied:  res.Applied,
		Game:     sess.Snapshot(),
	}
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	pos := sess.Position()
	score := engine.Evaluate(pos)
	white, black := pos.MaterialTotals()

	return c.JSON(fiber.Map{
		"score":    score,
		"display":  engine.ScoreToString(score),
		"material": fiber.Map{"white": white, "black": black},
	})
}

func (s *Server) archive(c *fiber.Ctx) error {
	games, err := s.games.ArchivedGames()
	if err != nil {
		return err
	}
	if games == nil {
		games = []storage.GameRecord{}
	}
	return c.JSON(fiber.Map{"games": games})
}

func (s *Server) stats(c *fiber.Ctx) error {
	st, err := s.games.Stats()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"stats":         st,
		"decisive_rate": st.DecisiveRate(),
	})
}

func (s *Server) archived(c *fiber.Ctx) error {
	rec, err := s.games.Archived(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}
