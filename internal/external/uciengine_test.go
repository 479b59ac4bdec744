package external

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// scriptedEngine starts a shell UCI engine that never finishes a search on
// its own and runs onStop when told to stop.
func scriptedEngine(t *testing.T, onStop string) *Engine {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}

	script := `#!/bin/sh
while read line; do
  case "$line" in
    uci) echo "id name scripted"; echo uciok ;;
    isready) echo readyok ;;
    stop) ` + onStop + ` ;;
    quit) exit 0 ;;
  esac
done
`
	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	eng, err := NewEngine(path)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	if eng.Name() != "scripted" {
		t.Errorf("name = %q", eng.Name())
	}
	return eng
}

func TestInterruptedSearch(t *testing.T) {
	tests := []struct {
		name   string
		onStop string
		after  error
	}{
		{"AnswersStop", "echo bestmove e2e4", context.DeadlineExceeded},
		{"IgnoresStop", ":", ErrEngineClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := scriptedEngine(t, tt.onStop)
			search := func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
				defer cancel()
				_, err := eng.BestMove(ctx, board.NewPosition(), engine.SearchLimits{Depth: 5})
				return err
			}

			if err := search(); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("first search: %v", err)
			}
			// An engine that answered stop keeps serving searches.
			if err := search(); !errors.Is(err, tt.after) {
				t.Errorf("second search: got %v, want %v", err, tt.after)
			}
		})
	}
}
