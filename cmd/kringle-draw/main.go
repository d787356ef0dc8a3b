// cmd/kringle-draw/main.go
//
// Headless draw runner. Loads a roster file, runs the draw, and writes
// one sealed envelope file per giver under .kringle/envelopes/ so the
// organizer can distribute results without ever seeing a pairing. The
// summary printed to stdout lists givers and envelope paths only.

package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"

	"github.com/ohalloran/kringle/internal/config"
	"github.com/ohalloran/kringle/internal/envelope"
	"github.com/ohalloran/kringle/internal/exchange"
	"github.com/ohalloran/kringle/internal/logging"
	"github.com/ohalloran/kringle/internal/rosterfile"
)

func main() {
	var (
		projectDir  string
		rosterPath  string
		seed        int64
		maxAttempts int
	)
	flag.StringVar(&projectDir, "project", ".", "project directory (holds the .kringle folder)")
	flag.StringVar(&rosterPath, "roster", "", "roster file to draw from (default: the project's configured roster)")
	flag.Int64Var(&seed, "seed", 0, "random seed; 0 seeds from the clock")
	flag.IntVar(&maxAttempts, "attempts", 0, "random-retry cap before the exact matcher; 0 uses the configured value")
	flag.Parse()

	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		die("resolve project directory: %v", err)
	}
	if err := config.InitKringleDir(projectDir); err != nil {
		die("initialize .kringle directory: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		die("load configuration: %v", err)
	}

	logger, err := logging.New(projectDir)
	if err != nil {
		die("open log file: %v", err)
	}
	defer logger.Close()

	if rosterPath == "" {
		rosterPath = cfg.RosterPath()
	}
	doc, err := rosterfile.Load(rosterPath)
	if err != nil {
		logger.Printf("draw aborted: %v", err)
		die("%v", err)
	}
	roster, err := doc.Roster()
	if err != nil {
		logger.Printf("draw aborted: %v", err)
		die("roster problem: %v", err)
	}

	var opts []exchange.SolveOption
	if seed != 0 {
		opts = append(opts, exchange.WithRand(rand.New(rand.NewSource(seed))))
	}
	if maxAttempts == 0 {
		maxAttempts = cfg.SolverMaxAttempts()
	}
	if maxAttempts > 0 {
		opts = append(opts, exchange.WithMaxAttempts(maxAttempts))
	}

	assignment, err := exchange.Solve(roster, opts...)
	if err != nil {
		logger.Printf("draw failed: %v", err)
		switch {
		case errors.Is(err, exchange.ErrInfeasible):
			die("no valid assignment exists for this roster; adjust partners or fixed pairs and try again")
		case exchange.IsConfigError(err):
			die("roster problem: %v", err)
		default:
			die("%v", err)
		}
	}

	store := envelope.NewStore(cfg.EnvelopesDir())
	paths, err := store.SealAll(assignment)
	if err != nil {
		logger.Printf("draw %s: %v", assignment.ID(), err)
		die("%v", err)
	}
	logger.Printf("draw %s complete: %d participants, envelopes in %s",
		assignment.ID(), assignment.Len(), cfg.EnvelopesDir())

	fmt.Printf("Draw %s complete · %d participants\n\n", assignment.ID(), assignment.Len())
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Giver", "Envelope"})
	for _, giver := range assignment.Givers() {
		table.Append([]string{giver, paths[giver]})
	}
	table.Render()
	fmt.Println("\nHand each envelope to its giver unopened.")
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "kringle-draw: "+format+"\n", args...)
	os.Exit(1)
}
