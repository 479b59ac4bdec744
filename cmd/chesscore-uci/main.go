package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	bookPath   = flag.String("book", "", "polyglot opening book")
	threads    = flag.Int("threads", 1, "search goroutines")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	eng := engine.NewEngine()
	eng.SetThreads(*threads)

	protocol := uci.New(eng)
	if *bookPath != "" {
		b, err := book.LoadPolyglot(*bookPath)
		if err != nil {
			log.Printf("Warning: book not loaded: %v", err)
		} else {
			protocol.SetBook(b)
		}
	}

	protocol.Run()
}
