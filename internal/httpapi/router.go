package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/connect4/internal/engine"
	"github.com/freeeve/connect4/internal/game"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed public
var publicFS embed.FS

// StatsProvider reports engine counters for /v1/stats.
type StatsProvider interface {
	Stats() engine.SolverStats
}

// Options tunes the router.
type Options struct {
	// SearchTimeout bounds the engine work of one request. Zero means no
	// limit beyond the request context.
	SearchTimeout time.Duration
	// Pprof mounts the /debug/pprof endpoints.
	Pprof bool
}

// Handler serves the game pages and the JSON API.
type Handler struct {
	orch    *game.Orchestrator
	stats   StatsProvider
	pages   *template.Template
	timeout time.Duration
	log     zerolog.Logger
}

// NewRouter creates the HTTP router. stats is optional.
func NewRouter(log zerolog.Logger, orch *game.Orchestrator, stats StatsProvider, opts Options) http.Handler {
	h := &Handler{
		orch:    orch,
		stats:   stats,
		pages:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
		timeout: opts.SearchTimeout,
		log:     log,
	}

	public, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.health)
	mux.HandleFunc("/readyz", h.health)
	mux.HandleFunc("GET /v1/stats", h.statsJSON)
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /new/{side}", h.newGame)
	mux.HandleFunc("GET /game/{moves...}", h.gamePage)
	mux.HandleFunc("GET /v1/game/{moves...}", h.gameJSON)
	mux.Handle("GET /public/", http.StripPrefix("/public/", http.FileServerFS(public)))

	if opts.Pprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return CORS(RequestID(AccessLog(log, mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) statsJSON(w http.ResponseWriter, r *http.Request) {
	var st engine.SolverStats
	if h.stats != nil {
		st = h.stats.Stats()
	}
	writeJSON(w, map[string]any{
		"nodes":     st.Nodes,
		"analyses":  st.Analyses,
		"book_size": st.BookSize,
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.orch.Start(showScores(r)))
}

func (h *Handler) newGame(w http.ResponseWriter, r *http.Request) {
	side, err := game.ParseSide(r.PathValue("side"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	v, err := h.orch.NewGame(ctx, side, showScores(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, v)
}

func (h *Handler) gamePage(w http.ResponseWriter, r *http.Request) {
	v, err := h.turn(r)
	switch {
	case err == nil:
		h.render(w, r, v)
	case errors.Is(err, game.ErrInvalidLog):
		h.log.Debug().Err(err).Str("rid", GetRequestID(r.Context())).Msg("invalid move log, starting over")
		http.Redirect(w, r, game.NewGamePath, http.StatusSeeOther)
	case errors.Is(err, game.ErrIllegalMove):
		v, err = h.replay(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		v.Notice = "That column cannot be played, pick another one"
		h.render(w, r, v)
	default:
		h.fail(w, r, err)
	}
}

func (h *Handler) gameJSON(w http.ResponseWriter, r *http.Request) {
	v, err := h.turn(r)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.logFailure(r, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, ToGameResponse(v))
}

// turn handles one game request: a move when col is present, otherwise a
// fresh look at the position.
func (h *Handler) turn(r *http.Request) (*game.View, error) {
	m, err := game.Decode(r.PathValue("moves"))
	if err != nil {
		return nil, err
	}
	show := showScores(r)
	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	colText := r.URL.Query().Get("col")
	if colText == "" {
		return h.orch.Show(ctx, m, show)
	}
	col, err := strconv.Atoi(colText)
	if err != nil {
		return nil, fmt.Errorf("%w: column %q", game.ErrIllegalMove, colText)
	}
	return h.orch.Play(ctx, m, col, show)
}

// replay shows the submitted position unchanged.
func (h *Handler) replay(r *http.Request) (*game.View, error) {
	m, err := game.Decode(r.PathValue("moves"))
	if err != nil {
		return nil, err
	}
	ctx, cancel := h.searchContext(r.Context())
	defer cancel()
	return h.orch.Show(ctx, m, showScores(r))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, v *game.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, "page", newPageData(v)); err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("render page")
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logFailure(r, err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) logFailure(r *http.Request, err error) {
	h.log.Error().
		Err(err).
		Str("rid", GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("game request failed")
}

func (h *Handler) searchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

// errorStatus maps game errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidLog), errors.Is(err, game.ErrIllegalMove):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, game.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func showScores(r *http.Request) bool {
	switch r.URL.Query().Get("show") {
	case "1", "true", "True":
		return true
	}
	return false
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
