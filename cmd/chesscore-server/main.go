package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/external"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/server"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/tablebase"
)

var (
	addr         = flag.String("addr", envOr("CHESSCORE_ADDR", ":8080"), "listen address")
	dbDir        = flag.String("db", os.Getenv("CHESSCORE_DB"), "database directory (default: platform data dir)")
	enginePath   = flag.String("engine", os.Getenv("CHESSCORE_ENGINE"), "external UCI engine binary")
	bookPath     = flag.String("book", "", "polyglot opening book")
	threads      = flag.Int("threads", 1, "search goroutines")
	intelligence = flag.Int("intelligence", 4, "default computer search depth")
	moveTime     = flag.Duration("movetime", 5*time.Second, "default computer time per move")
	origins      = flag.String("cors", "", "allowed CORS origins")
	tbURL        = flag.String("tablebase", os.Getenv("CHESSCORE_TABLEBASE"), "Lichess tablebase URL for endgames (\"default\" for the public service)")
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	flag.Parse()

	var (
		store *storage.Store
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStore()
	}
	if err != nil {
		log.Fatal("could not open database: ", err)
	}
	defer store.Close()

	builtin := external.NewBuiltin()
	builtin.Engine.SetThreads(*threads)
	if *bookPath != "" {
		b, err := book.LoadPolyglot(*bookPath)
		if err != nil {
			log.Printf("Warning: book not loaded: %v", err)
		} else {
			builtin.Engine.SetBook(b)
			log.Printf("Loaded %d book positions from %s", b.Size(), *bookPath)
		}
	}

	source := &external.FallbackSource{
		Secondary: builtin,
		OnFallback: func(err error) {
			log.Printf("external engine failed, using built-in search: %v", err)
		},
	}
	if *enginePath != "" {
		ext, err := external.NewEngine(*enginePath)
		if err != nil {
			log.Printf("Warning: external engine not started: %v", err)
		} else {
			defer ext.Close()
			source.Primary = ext
			log.Printf("Using external engine %s", ext.Name())
		}
	}

	var moves external.MoveSource = source
	if *tbURL != "" {
		u := *tbURL
		if u == "default" {
			u = tablebase.DefaultURL
		}
		// Positions outside the table fall through to the engines.
		moves = &external.FallbackSource{Primary: tablebase.NewClient(u), Secondary: source}
		log.Printf("Probing tablebase at %s", u)
	}

	games := game.NewManager(moves)
	games.SetArchive(store)
	games.SetCache(store)

	srv := server.New(games, server.Config{
		AllowOrigins: *origins,
		LogOutput:    os.Stdout,
		Limits:       engine.LimitsForIntelligence(*intelligence, *moveTime),
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("Shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Listening on %s (%d threads)", *addr, *threads)
	if err := srv.Listen(*addr); err != nil {
		log.Printf("server: %v", err)
	}
}
