// Package uci implements the Universal Chess Interface protocol on top of
// the built-in engine.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position

	out    io.Writer
	errOut io.Writer
	outMu  sync.Mutex

	// Opening book
	bookPath string
	book     *book.Book
	ownBook  bool

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}

	// CPU profiling
	profileFile *os.File
}

// New creates a UCI handler writing to stdout and stderr.
func New(eng *engine.Engine) *UCI {
	return NewWithIO(eng, os.Stdout, os.Stderr)
}

// NewWithIO creates a UCI handler with explicit output streams.
func NewWithIO(eng *engine.Engine, out, errOut io.Writer) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		out:      out,
		errOut:   errOut,
		ownBook:  true,
	}
}

// SetBook installs an opening book, as if loaded through setoption.
func (u *UCI) SetBook(b *book.Book) {
	u.book = b
	u.applyBook()
}

// Run reads commands from stdin until quit or end of input.
func (u *UCI) Run() {
	u.Serve(os.Stdin)
}

// Serve reads commands from r until quit or end of input. A running search
// is stopped before Serve returns.
func (u *UCI) Serve(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "perft":
			u.handlePerft(args)
		case "eval":
			u.handleEval()
		default:
			u.infoString("Unknown command: %s", cmd)
		}
	}

	u.handleStop()
	return scanner.Err()
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// infoString reports diagnostics on the error stream.
func (u *UCI) infoString(format string, args ...any) {
	fmt.Fprintf(u.errOut, "info string "+format+"\n", args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name ChessCore")
	u.println("id author ChessCore Team")
	u.println("")
	u.printf("option name Threads type spin default %d min 1 max 64\n", u.engine.Threads())
	u.println("option name OwnBook type check default true")
	u.println("option name BookFile type string default <empty>")
	u.println("uciok")
}

// handleNewGame resets the position for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// On any error the previous position is kept.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		p, err := board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.infoString("Invalid FEN: %v", err)
			return
		}
		pos = p
	default:
		return
	}

	if movesAt < len(args) {
		for _, moveStr := range args[movesAt+1:] {
			m, err := board.ParseUCI(moveStr, pos)
			if err == nil {
				err = pos.Apply(m)
			}
			if err != nil {
				u.infoString("Invalid move %s: %v", moveStr, err)
				return
			}
		}
	}

	u.position = pos
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := ParseGoOptions(args)
	pos := u.position.Copy()
	limits := u.calculateLimits(opts, pos)

	u.engine.OnInfo = u.sendInfo

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})
	done := u.searchDone

	go func() {
		defer close(done)

		res, ok := u.engine.FindMove(ctx, pos, limits)
		if !ok {
			// Only checkmate or stalemate leave no legal move.
			u.println("bestmove 0000")
			return
		}
		if res.FromBook {
			u.infoString("book move %s", res.Move)
		}
		u.printf("bestmove %s\n", res.Move)
	}()
}

// ParseGoOptions parses "go" command arguments.
func ParseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	millis := func(i int) time.Duration {
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "depth":
			if hasValue {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if hasValue {
				opts.MoveTime = millis(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if hasValue {
				opts.WTime = millis(i + 1)
				i++
			}
		case "btime":
			if hasValue {
				opts.BTime = millis(i + 1)
				i++
			}
		case "winc":
			if hasValue {
				opts.WInc = millis(i + 1)
				i++
			}
		case "binc":
			if hasValue {
				opts.BInc = millis(i + 1)
				i++
			}
		case "movestogo":
			if hasValue {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts GoOptions to engine.SearchLimits.
func (u *UCI) calculateLimits(opts GoOptions, pos *board.Position) engine.SearchLimits {
	l := engine.UCILimits{
		Time:      [2]time.Duration{opts.WTime, opts.BTime},
		Inc:       [2]time.Duration{opts.WInc, opts.BInc},
		MovesToGo: opts.MovesToGo,
		MoveTime:  opts.MoveTime,
		Depth:     engine.ClampDepth(opts.Depth),
		Infinite:  opts.Infinite,
	}
	if opts.Infinite {
		return engine.SearchLimits{}
	}

	ply := (pos.FullMoveNumber()-1)*2 + int(pos.SideToMove())
	limits := l.SearchLimits(pos.SideToMove(), ply)
	if limits.MoveTime > 0 && opts.MoveTime == 0 {
		u.infoString("time_allocated=%dms", limits.MoveTime.Milliseconds())
	}
	return limits
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, "score "+FormatScore(info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if !info.BestMove.IsNone() {
		parts = append(parts, "pv "+info.BestMove.String())
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// FormatScore renders a side-to-move score as "cp N" or "mate N".
func FormatScore(score int) string {
	switch {
	case score > engine.MateScore-engine.MaxPly:
		return fmt.Sprintf("mate %d", (engine.MateScore-score+1)/2)
	case score < -engine.MateScore+engine.MaxPly:
		return fmt.Sprintf("mate %d", -(engine.MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	u.engine.Stop()
	<-u.searchDone
	u.cancel = nil
}

// handleQuit stops searching and profiling.
func (u *UCI) handleQuit() {
	u.handleStop()
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.profileFile = nil
		u.infoString("CPU profile saved")
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			u.infoString("Invalid Threads value %q", value)
			return
		}
		u.handleStop()
		u.engine.SetThreads(n)
	case "ownbook":
		u.ownBook = strings.ToLower(value) == "true"
		u.applyBook()
	case "bookfile":
		u.bookPath = value
		if value == "" || value == "<empty>" {
			u.book = nil
			u.applyBook()
			return
		}
		b, err := book.LoadPolyglot(value)
		if err != nil {
			u.infoString("Failed to load book: %v", err)
			return
		}
		u.book = b
		u.applyBook()
		u.infoString("Book loaded: %d positions", b.Size())
	case "cpuprofile":
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			u.profileFile = nil
			u.infoString("CPU profile stopped")
		}
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				u.infoString("Failed to create profile: %v", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				u.infoString("Failed to start profile: %v", err)
				return
			}
			u.profileFile = f
			u.infoString("CPU profiling to %s", value)
		}
	}
}

func (u *UCI) applyBook() {
	if u.ownBook {
		u.engine.SetBook(u.book)
	} else {
		u.engine.SetBook(nil)
	}
}

// handleDisplay prints the board, FEN and book key.
func (u *UCI) handleDisplay() {
	u.println(u.position.String())
	u.printf("Fen: %s\n", u.position.ToFEN())
	u.printf("Key: %016X\n", u.position.PolyglotHash())
	u.printf("Status: %s\n", u.position.Status())
}

// handleEval prints the static evaluation from White's point of view.
func (u *UCI) handleEval() {
	pos := u.position.Copy()
	score := engine.Evaluate(pos)
	white, black := pos.MaterialTotals()
	u.printf("Eval: %d (%s)\n", score, engine.ScoreToString(score))
	u.printf("Material: white %d black %d\n", white, black)
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
