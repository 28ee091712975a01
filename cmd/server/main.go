package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/connect4/internal/book"
	"github.com/freeeve/connect4/internal/engine"
	"github.com/freeeve/connect4/internal/game"
	"github.com/freeeve/connect4/internal/httpapi"
	"github.com/freeeve/connect4/internal/logx"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		// Server
		addr          = flag.String("addr", envOr("C4_ADDR", ":8088"), "listen address (env C4_ADDR)")
		searchTimeout = flag.Duration("search-timeout", 20*time.Second, "engine time budget per request (0 = unlimited)")
		pprofOn       = flag.Bool("pprof", false, "mount /debug/pprof")

		// Engine
		bookPath  = flag.String("book", os.Getenv("C4_BOOK"), "opening book file (env C4_BOOK, default: XDG data dirs)")
		tableSize = flag.Int("table-size", engine.DefaultTableSize, "transposition table entries per search")

		// Logging
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logJSON  = flag.Bool("log-json", false, "log JSON lines instead of console output")
	)
	flag.Parse()

	logger, err := logx.NewLogger(logx.Options{Level: *logLevel, JSON: *logJSON})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := engine.SolverConfig{
		TableSize: *tableSize,
		Logger:    logger.With().Str("component", "solver").Logger(),
	}
	if b, err := openBook(logger, *bookPath); err != nil {
		logger.Fatal().Err(err).Str("book", *bookPath).Msg("load opening book")
	} else if b != nil {
		cfg.Book = b
	}
	solver := engine.NewSolver(cfg)
	orch := game.NewOrchestrator(solver, logger.With().Str("component", "game").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr: *addr,
		Handler: httpapi.NewRouter(logger, orch, solver, httpapi.Options{
			SearchTimeout: *searchTimeout,
			Pprof:         *pprofOn,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: *searchTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("connect4 listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}

	st := solver.Stats()
	logger.Info().
		Uint64("nodes", st.Nodes).
		Uint64("analyses", st.Analyses).
		Msg("shutdown complete")
}

// openBook loads the opening book. A missing book is only fatal when a path
// was given explicitly; without one the solver searches from scratch.
func openBook(logger zerolog.Logger, path string) (*book.Book, error) {
	resolved, err := book.Resolve(path)
	if err != nil {
		if path == "" && errors.Is(err, book.ErrNotFound) {
			logger.Warn().Str("file", book.DefaultFile).Msg("no opening book found, early positions will be slow")
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", game.ErrEngineUnavailable, err)
	}

	start := time.Now()
	b, err := book.Load(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrEngineUnavailable, err)
	}
	logger.Info().
		Str("file", resolved).
		Int("positions", b.Len()).
		Int("depth", b.Depth()).
		Dur("took", time.Since(start)).
		Msg("opening book loaded")
	return b, nil
}
