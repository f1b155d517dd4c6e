// Package api serves the simulator over HTTP: one-shot quarter simulation,
// persisted games that advance a quarter per request, report history and
// a websocket stream of closed quarters.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/engine"
	"github.com/talgya/topaz-sim/internal/persistence"
	"github.com/talgya/topaz-sim/internal/report"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP dependencies. DB may be nil, in which case games
// live only in memory for the life of the process.
type Server struct {
	DB         *persistence.DB
	Hub        *Hub
	Seed       int64
	Companies  int
	Allocation engine.Allocation
	Origins    []string
	RateLimit  int // requests per hour per client on simulate and step

	mu    sync.Mutex
	games map[string]*game
}

// game is a live simulation guarded for one request at a time.
type game struct {
	mu  sync.Mutex
	id  string
	sim *engine.Simulation
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.routes(s.newLimiter())
}

func (s *Server) newLimiter() *RateLimiter {
	rate := s.RateLimit
	if rate <= 0 {
		rate = 600
	}
	return NewRateLimiter(rate, time.Hour)
}

func (s *Server) routes(limiter *RateLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/simulate", RateLimitMiddleware(limiter, s.handleSimulate))
	mux.HandleFunc("POST /api/v1/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/v1/games", s.handleListGames)
	mux.HandleFunc("GET /api/v1/games/{id}", s.handleGame)
	mux.HandleFunc("POST /api/v1/games/{id}/step", RateLimitMiddleware(limiter, s.handleStep))
	mux.HandleFunc("GET /api/v1/games/{id}/reports", s.handleReports)
	mux.HandleFunc("GET /api/v1/games/{id}/events", s.handleEvents)
	if s.Hub != nil {
		mux.HandleFunc("GET /api/v1/stream", s.Hub.ServeWs)
	}
	return corsMiddleware(s.Origins, mux)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	limiter := s.newLimiter()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()
	slog.Info("HTTP API starting", "addr", addr, "persistent", s.DB != nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": "healthy"})
}

// stepResponse is a step result with the success flag alongside it.
type stepResponse struct {
	OK bool `json:"ok"`
	*engine.StepResult
}

// handleSimulate runs a single quarter from the opening position.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Players    int               `json:"players"`
		Seed       *int64            `json:"seed"`
		Companies  int               `json:"companies"`
		Allocation engine.Allocation `json:"allocation"`
		Decisions  json.RawMessage   `json:"decisions"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	decisions, err := ParseDecisions(req.Decisions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sim := engine.New(s.options(req.Players, req.Seed, req.Companies, req.Allocation))
	res, err := sim.Step(decisions)
	if err != nil {
		writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{OK: true, StepResult: res})
}

func (s *Server) options(players int, seed *int64, companies int, alloc engine.Allocation) engine.Options {
	opts := engine.Options{
		Players:    max(1, players),
		Seed:       s.Seed,
		Companies:  companies,
		Allocation: alloc,
	}
	if seed != nil {
		opts.Seed = *seed
	}
	if opts.Companies == 0 {
		opts.Companies = s.Companies
	}
	if opts.Allocation == "" {
		opts.Allocation = s.Allocation
	}
	return opts
}

// companySummary is the public face of one company.
type companySummary struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Strategy   string  `json:"strategy,omitempty"`
	Human      bool    `json:"human"`
	Cash       float64 `json:"cash"`
	SharePrice float64 `json:"share_price"`
	Reserves   float64 `json:"reserves"`
}

type gameSummary struct {
	ID            string                `json:"id"`
	Players       int                   `json:"players"`
	Seed          int64                 `json:"seed"`
	Quarters      int                   `json:"quarters"`
	Allocation    engine.Allocation     `json:"allocation"`
	Economy       economy.Economy       `json:"economy"`
	PendingEvents []economy.RandomEvent `json:"pending_events,omitempty"`
	Companies     []companySummary      `json:"companies"`
}

func summarize(g *game) gameSummary {
	sim := g.sim
	out := gameSummary{
		ID:            g.id,
		Players:       sim.Players,
		Seed:          sim.Seed,
		Quarters:      sim.Quarters,
		Allocation:    sim.Allocation,
		Economy:       *sim.Economy,
		PendingEvents: sim.PendingEvents,
		Companies:     make([]companySummary, len(sim.Companies)),
	}
	for i, c := range sim.Companies {
		out.Companies[i] = companySummary{
			Index:      i,
			Name:       c.Name,
			Strategy:   c.Strategy,
			Human:      sim.Human(i),
			Cash:       c.Cash,
			SharePrice: c.SharePrice,
			Reserves:   c.Reserves,
		}
	}
	return out
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Players    int               `json:"players"`
		Seed       *int64            `json:"seed"`
		Companies  int               `json:"companies"`
		Allocation engine.Allocation `json:"allocation"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Allocation {
	case "", engine.Simultaneous, engine.Sequential:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown allocation %q", req.Allocation))
		return
	}

	g := &game{
		id:  uuid.NewString(),
		sim: engine.New(s.options(req.Players, req.Seed, req.Companies, req.Allocation)),
	}
	if s.DB != nil {
		if err := s.DB.CreateGame(g.id, g.sim.Snapshot()); err != nil {
			slog.Error("create game failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not save game")
			return
		}
	}

	s.mu.Lock()
	if s.games == nil {
		s.games = make(map[string]*game)
	}
	s.games[g.id] = g
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, summarize(g))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		s.mu.Lock()
		ids := make([]string, 0, len(s.games))
		for id := range s.games {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": ids})
		return
	}
	games, err := s.DB.Games(50)
	if err != nil {
		slog.Error("list games failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list games")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": games})
}

// lookup returns the live game for id, restoring it from the database on
// first use.
func (s *Server) lookup(id string) (*game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.games[id]; ok {
		return g, nil
	}
	if s.DB == nil {
		return nil, persistence.ErrGameNotFound
	}
	snap, err := s.DB.LoadGame(id)
	if err != nil {
		return nil, err
	}
	sim, err := engine.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	if s.games == nil {
		s.games = make(map[string]*game)
	}
	g := &game{id: id, sim: sim}
	s.games[id] = g
	return g, nil
}

func (s *Server) gameOrError(w http.ResponseWriter, r *http.Request) *game {
	g, err := s.lookup(r.PathValue("id"))
	if errors.Is(err, persistence.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return nil
	}
	if err != nil {
		slog.Error("load game failed", "id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "could not load game")
		return nil
	}
	return g
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	g := s.gameOrError(w, r)
	if g == nil {
		return
	}
	g.mu.Lock()
	sum := summarize(g)
	g.mu.Unlock()
	writeJSON(w, http.StatusOK, sum)
}

// handleStep advances a game by one quarter, saves the result and
// broadcasts it.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	g := s.gameOrError(w, r)
	if g == nil {
		return
	}

	var req struct {
		Decisions json.RawMessage `json:"decisions"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	decisions, err := ParseDecisions(req.Decisions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.sim.Step(decisions)
	if err != nil {
		writeStepError(w, err)
		return
	}
	if s.DB != nil {
		if err := s.DB.SaveStep(g.id, g.sim.Snapshot(), res); err != nil {
			slog.Error("save step failed", "id", g.id, "error", err)
			writeError(w, http.StatusInternalServerError, "quarter ran but could not be saved")
			return
		}
		if err := s.DB.CountStep(); err != nil {
			slog.Warn("step counter not updated", "error", err)
		}
	}
	if s.Hub != nil {
		s.Hub.Publish("quarter_closed", map[string]any{"game_id": g.id, "result": res})
	}

	writeJSON(w, http.StatusOK, stepResponse{OK: true, StepResult: res})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	g := s.gameOrError(w, r)
	if g == nil {
		return
	}

	company := -1
	if v := r.URL.Query().Get("company"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "company must be a non-negative index")
			return
		}
		g.mu.Lock()
		count := len(g.sim.Companies)
		g.mu.Unlock()
		if n >= count {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("company %d out of range (%d companies)", n, count))
			return
		}
		company = n
	}

	var reports []report.ManagementReport
	if s.DB != nil {
		var err error
		reports, err = s.DB.Reports(g.id, company)
		if err != nil {
			slog.Error("load reports failed", "id", g.id, "error", err)
			writeError(w, http.StatusInternalServerError, "could not load reports")
			return
		}
	} else {
		g.mu.Lock()
		if company >= 0 {
			reports = g.sim.Reports(company)
		} else {
			for _, quarter := range g.sim.History {
				reports = append(reports, quarter...)
			}
		}
		g.mu.Unlock()
	}
	if reports == nil {
		reports = []report.ManagementReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reports": reports})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	g := s.gameOrError(w, r)
	if g == nil {
		return
	}
	if s.DB == nil {
		g.mu.Lock()
		events := g.sim.PendingEvents
		g.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "events": events})
		return
	}
	events, err := s.DB.RecentEvents(g.id, 20)
	if err != nil {
		slog.Error("load events failed", "id", g.id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "events": events})
}

// ParseDecisions accepts a single decision object, an array of them
// (null entries leave a slot to the AI) or nothing. Each object is merged
// onto decision.Default so callers may send only the fields they change.
func ParseDecisions(raw json.RawMessage) ([]*decision.Decisions, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decisions: %w", err)
		}
	} else {
		items = []json.RawMessage{raw}
	}

	out := make([]*decision.Decisions, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		d := decision.Default()
		if err := json.Unmarshal(item, &d); err != nil {
			return nil, fmt.Errorf("decisions[%d]: %w", i, err)
		}
		out[i] = &d
	}
	return out, nil
}

// decodeBody reads a JSON body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeStepError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrMissingDecision) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("step failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
