package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/freeeve/connect4/internal/book"
	"github.com/freeeve/connect4/internal/engine"
	"github.com/freeeve/connect4/internal/logx"
)

func main() {
	var (
		depth     = flag.Int("depth", 8, "deepest ply to store")
		workers   = flag.Int("workers", runtime.NumCPU(), "concurrent solves")
		out       = flag.String("out", "book.csv.zst", "output file (.csv, .csv.gz or .csv.zst)")
		tableSize = flag.Int("table-size", engine.DefaultTableSize, "transposition table entries per search")
		progress  = flag.Duration("progress", 10*time.Second, "progress log interval (0 = off)")
		logLevel  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logJSON   = flag.Bool("log-json", false, "log JSON lines instead of console output")
	)
	flag.Parse()

	logger, err := logx.NewLogger(logx.Options{Level: *logLevel, JSON: *logJSON})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layers := book.Enumerate(*depth)
	total := 0
	for _, l := range layers {
		total += len(l)
	}
	logger.Info().Int("depth", *depth).Int("positions", total).Msg("enumerated positions")

	// Deep plies go first so that shallower searches stop at book hits.
	b := book.New()
	solver := engine.NewSolver(engine.SolverConfig{
		Book:      b,
		TableSize: *tableSize,
		Logger:    logger.With().Str("component", "solver").Logger(),
	})

	var entries []book.Entry
	start := time.Now()
	for ply := len(layers) - 1; ply >= 0; ply-- {
		layerStart := time.Now()
		got, err := book.Build(ctx, solver, layers[ply], book.BuildConfig{
			Workers:       *workers,
			ProgressEvery: *progress,
			Logger:        logger.With().Int("ply", ply).Logger(),
		})
		if err != nil {
			logger.Fatal().Err(err).Int("ply", ply).Msg("build book")
		}
		for _, e := range got {
			b.Put(e)
		}
		entries = append(entries, got...)
		logger.Info().
			Int("ply", ply).
			Int("positions", len(got)).
			Dur("took", time.Since(layerStart)).
			Msg("ply solved")
	}

	if err := book.Write(*out, entries); err != nil {
		logger.Fatal().Err(err).Str("out", *out).Msg("write book")
	}
	st := solver.Stats()
	logger.Info().
		Str("out", *out).
		Int("positions", len(entries)).
		Uint64("nodes", st.Nodes).
		Dur("took", time.Since(start)).
		Msg("book written")
}
