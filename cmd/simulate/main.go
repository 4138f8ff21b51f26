package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/inhouse/internal/simulate"
	"github.com/okian/inhouse/pkg/logger"
)

// Default configuration constants.
const (
	defaultParticipants = 23
	defaultCycles       = 3
	defaultMaxEpochs    = 1_000
	defaultNeighbors    = 16
	defaultTop          = 25
	defaultTimeout      = 5 * time.Minute
)

func main() {
	var (
		participants = flag.Int("participants", defaultParticipants, "Number of synthetic participants")
		cycles       = flag.Int("cycles", defaultCycles, "Number of cycles to play")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "Seed for generation, play and the optimizer")
		workers      = flag.Int("workers", runtime.NumCPU(), "Number of optimizer workers")
		epochs       = flag.Int("epochs", defaultMaxEpochs, "Optimizer epoch cap")
		budget       = flag.Duration("budget", 0, "Optimizer wall-time cap per match (0 disables it)")
		neighbors    = flag.Int("neighbors", defaultNeighbors, "Moves sampled per epoch")
		top          = flag.Int("top", defaultTop, "Standings rows to print")
		timeout      = flag.Duration("timeout", defaultTimeout, "Overall timeout")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	logger.Get().Info(ctx, "starting simulation", logger.Int64("seed", *seed))
	_, err := simulate.Run(ctx, simulate.Config{
		Participants: *participants,
		Cycles:       *cycles,
		Seed:         *seed,
		Workers:      *workers,
		MaxEpochs:    *epochs,
		SearchBudget: *budget,
		Neighbors:    *neighbors,
		Top:          *top,
		Verbose:      *verbose,
	}, os.Stdout)
	if err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
