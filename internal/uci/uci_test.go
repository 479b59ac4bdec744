package uci

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
)

func newTestUCI() (*UCI, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithIO(engine.NewEngine(), &out, &errOut), &out, &errOut
}

// wait blocks until the running search printed its bestmove.
func wait(t *testing.T, u *UCI) {
	t.Helper()
	select {
	case <-u.searchDone:
	case <-time.After(30 * time.Second):
		t.Fatal("search did not finish")
	}
	u.cancel = nil
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "bestmove ") {
			return strings.TrimPrefix(line, "bestmove ")
		}
	}
	t.Fatalf("no bestmove in output:\n%s", out)
	return ""
}

func TestHandshake(t *testing.T) {
	u, out, _ := newTestUCI()
	if err := u.Serve(strings.NewReader("uci\nisready\nquit\n")); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	got := out.String()
	for _, want := range []string{"id name ChessCore", "option name Threads", "uciok", "readyok"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPositionCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		fen  string
	}{
		{"Startpos", "startpos", board.StartFEN},
		{"StartposMoves", "startpos moves e2e4 e7e5 g1f3",
			"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"},
		{"FEN", "fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1", "4k3/8/8/8/8/8/8/4K2R w K - 0 1"},
		{"FENMoves", "fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1 moves e1g1", "4k3/8/8/8/8/8/8/5RK1 b - - 1 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _, _ := newTestUCI()
			u.handlePosition(strings.Fields(tt.cmd))
			if got := u.position.ToFEN(); got != tt.fen {
				t.Errorf("got %s, want %s", got, tt.fen)
			}
		})
	}
}

func TestPositionErrorsKeepPrevious(t *testing.T) {
	u, _, errOut := newTestUCI()
	u.handlePosition(strings.Fields("startpos moves e2e4"))
	want := u.position.ToFEN()

	for _, cmd := range []string{
		"fen not-a-fen",
		"startpos moves e2e4 e2e4",
		"startpos moves e1g1",
	} {
		u.handlePosition(strings.Fields(cmd))
		if got := u.position.ToFEN(); got != want {
			t.Errorf("%q replaced the position with %s", cmd, got)
		}
	}
	if !strings.Contains(errOut.String(), "info string Invalid") {
		t.Errorf("expected diagnostics, got %q", errOut.String())
	}
}

func TestGoDepthFindsMate(t *testing.T) {
	u, out, _ := newTestUCI()
	u.handlePosition(strings.Fields("fen r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"))
	u.handleGo(strings.Fields("depth 2"))
	wait(t, u)

	got := out.String()
	if m := bestMove(t, got); m != "h5f7" {
		t.Errorf("bestmove %s, want h5f7", m)
	}
	if !strings.Contains(got, "info depth 1 score mate 1") {
		t.Errorf("expected mate score info line:\n%s", got)
	}
}

func TestGoNoLegalMoves(t *testing.T) {
	u, out, _ := newTestUCI()
	u.handlePosition(strings.Fields("fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	u.handleGo(strings.Fields("depth 3"))
	wait(t, u)

	if m := bestMove(t, out.String()); m != "0000" {
		t.Errorf("bestmove %s, want 0000", m)
	}
}

func TestGoInfiniteAndStop(t *testing.T) {
	u, out, _ := newTestUCI()
	u.handleGo(strings.Fields("infinite"))
	time.Sleep(20 * time.Millisecond)
	u.handleStop()

	m := bestMove(t, out.String())
	if _, err := board.ParseUCI(m, board.NewPosition()); err != nil {
		t.Errorf("stopped search returned %q: %v", m, err)
	}
}

func TestGoUsesBook(t *testing.T) {
	u, out, _ := newTestUCI()

	b := book.New()
	b.Add(board.NewPosition().PolyglotHash(), book.Entry{
		From: board.NewSquare(2, 1), To: board.NewSquare(2, 3), Weight: 1,
	})
	u.SetBook(b)

	u.handleGo(strings.Fields("depth 4"))
	wait(t, u)
	if m := bestMove(t, out.String()); m != "c2c4" {
		t.Errorf("bestmove %s, want book move c2c4", m)
	}

	out.Reset()
	u.handleSetOption(strings.Fields("name OwnBook value false"))
	u.handleGo(strings.Fields("depth 1"))
	wait(t, u)
	if !strings.Contains(out.String(), "info depth 1") {
		t.Errorf("expected a real search with the book disabled:\n%s", out.String())
	}
}

func TestSetOptionThreads(t *testing.T) {
	u, _, errOut := newTestUCI()
	u.handleSetOption(strings.Fields("name Threads value 3"))
	if n := u.engine.Threads(); n != 3 {
		t.Errorf("Threads = %d, want 3", n)
	}
	u.handleSetOption(strings.Fields("name Threads value zero"))
	if n := u.engine.Threads(); n != 3 {
		t.Errorf("invalid value changed Threads to %d", n)
	}
	if !strings.Contains(errOut.String(), "Invalid Threads") {
		t.Errorf("expected diagnostic, got %q", errOut.String())
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := ParseGoOptions(strings.Fields("wtime 60000 btime 50000 winc 1000 binc 500 movestogo 20 depth 7"))
	want := GoOptions{
		Depth:     7,
		WTime:     60 * time.Second,
		BTime:     50 * time.Second,
		WInc:      time.Second,
		BInc:      500 * time.Millisecond,
		MovesToGo: 20,
	}
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}

	if opts := ParseGoOptions(strings.Fields("movetime 250 infinite depth")); opts.MoveTime != 250*time.Millisecond || !opts.Infinite || opts.Depth != 0 {
		t.Errorf("unexpected %+v", opts)
	}
}

func TestCalculateLimits(t *testing.T) {
	u, _, _ := newTestUCI()
	pos := board.NewPosition()

	if l := u.calculateLimits(GoOptions{Depth: 99}, pos); l.Depth != engine.MaxSearchDepth || l.MoveTime != 0 {
		t.Errorf("depth-only limits %+v", l)
	}
	if l := u.calculateLimits(GoOptions{MoveTime: time.Second}, pos); l.MoveTime != time.Second {
		t.Errorf("movetime limits %+v", l)
	}
	if l := u.calculateLimits(GoOptions{Infinite: true, Depth: 3}, pos); l != (engine.SearchLimits{}) {
		t.Errorf("infinite limits %+v", l)
	}
	l := u.calculateLimits(GoOptions{WTime: time.Minute, BTime: time.Second}, pos)
	if l.MoveTime <= 0 || l.MoveTime > time.Minute*8/10 {
		t.Errorf("clock limits %+v", l)
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{35, "cp 35"},
		{-120, "cp -120"},
		{engine.MateScore - 1, "mate 1"},
		{engine.MateScore - 3, "mate 2"},
		{-engine.MateScore + 2, "mate -1"},
	}
	for _, tt := range tests {
		if got := FormatScore(tt.score); got != tt.want {
			t.Errorf("FormatScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestDebugCommands(t *testing.T) {
	u, out, _ := newTestUCI()
	if err := u.Serve(strings.NewReader("d\neval\nperft 2\n")); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	key := fmt.Sprintf("Key: %016X", board.NewPosition().PolyglotHash())
	for _, want := range []string{"Fen: " + board.StartFEN, key, "Eval: 0", "Nodes: 400"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
