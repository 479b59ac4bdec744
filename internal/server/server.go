// Package server exposes game sessions over a local HTTP API.
package server

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/external"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

// Config configures the HTTP API.
type Config struct {
	AllowOrigins string              // CORS origins, empty for none
	LogOutput    io.Writer           // request log, nil disables it
	Limits       engine.SearchLimits // default computer limits
	ThinkTimeout time.Duration       // upper bound for one think request
}

// Server is the HTTP front of a game.Manager.
type Server struct {
	app    *fiber.App
	games  *game.Manager
	config Config
}

// New builds the fiber app and registers the routes.
func New(games *game.Manager, cfg Config) *Server {
	if cfg.ThinkTimeout <= 0 {
		cfg.ThinkTimeout = 30 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               "chesscore",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fail(c, err)
		},
	})

	app.Use(recover.New())
	if cfg.LogOutput != nil {
		app.Use(logger.New(logger.Config{Output: cfg.LogOutput}))
	}
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
			AllowHeaders: "Origin, Content-Type, Accept",
			AllowMethods: "GET, POST, DELETE, OPTIONS",
		}))
	}

	s := &Server{app: app, games: games, config: cfg}

	api := app.Group("/api")
	api.Get("/health", s.health)

	gameRoutes := api.Group("/games")
	gameRoutes.Get("/", s.listGames)
	gameRoutes.Post("/", s.createGame)
	gameRoutes.Get("/:id", s.getGame)
	gameRoutes.Delete("/:id", s.deleteGame)
	gameRoutes.Get("/:id/moves", s.legalMoves)
	gameRoutes.Post("/:id/moves", s.playMove)
	gameRoutes.Post("/:id/think", s.think)
	gameRoutes.Get("/:id/eval", s.evaluate)

	api.Get("/archive", s.archive)
	api.Get("/archive/:id", s.archived)
	api.Get("/stats", s.stats)

	app.Get("/ws/games/:id", s.upgradeGame, websocket.New(s.serveGame))

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, game.ErrNoSession), errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, game.ErrSearchInProgress), errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrStaleResult):
		return fiber.StatusConflict
	case errors.Is(err, board.ErrIllegalMove), errors.Is(err, board.ErrMalformedNotation),
		errors.Is(err, board.ErrOutOfBounds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, board.ErrInvalidFEN):
		return fiber.StatusBadRequest
	case errors.Is(err, external.ErrNoMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
