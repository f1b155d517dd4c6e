package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/topaz-sim/internal/engine"
	"github.com/talgya/topaz-sim/internal/persistence"
	"github.com/talgya/topaz-sim/internal/report"
)

func newTestServer(t *testing.T, withDB bool) *Server {
	t.Helper()
	s := &Server{Seed: 42, Companies: 4, RateLimit: 1000}
	if withDB {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		s.DB = db
	}
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type stepBody struct {
	OK      bool                      `json:"ok"`
	Error   string                    `json:"error"`
	Quarter int                       `json:"quarter"`
	Year    int                       `json:"year"`
	Reports []report.ManagementReport `json:"reports"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, false).Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSimulateSinglePlayer(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := do(t, h, http.MethodPost, "/api/v1/simulate", `{"players":1,"seed":7,"decisions":{"prices_home":[90,120,140]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decode[stepBody](t, rec)
	if !body.OK || body.Quarter != 1 || body.Year != 1 {
		t.Errorf("body = ok %v, Q%d Y%d", body.OK, body.Quarter, body.Year)
	}
	if len(body.Reports) != 4 {
		t.Errorf("reports = %d, want 4", len(body.Reports))
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	h := newTestServer(t, false).Handler()
	req := `{"players":1,"seed":3}`
	a := do(t, h, http.MethodPost, "/api/v1/simulate", req).Body.String()
	b := do(t, h, http.MethodPost, "/api/v1/simulate", req).Body.String()
	if a != b {
		t.Error("same seed and decisions gave different responses")
	}
}

func TestSimulateMissingMultiplayerDecision(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := do(t, h, http.MethodPost, "/api/v1/simulate", `{"players":2,"decisions":[{}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decode[stepBody](t, rec)
	if body.OK || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestSimulateBadJSON(t *testing.T) {
	rec := do(t, newTestServer(t, false).Handler(), http.MethodPost, "/api/v1/simulate", `{"players":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseDecisionsMergesDefaults(t *testing.T) {
	ds, err := ParseDecisions(json.RawMessage(`[{"shift_level":2}, null]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 2 || ds[1] != nil {
		t.Fatalf("got %d decisions, second %v", len(ds), ds[1])
	}
	if ds[0].ShiftLevel != 2 {
		t.Errorf("shift = %d, want 2", ds[0].ShiftLevel)
	}
	if ds[0].PricesHome[0] != 100 {
		t.Errorf("unsent field lost its default: %v", ds[0].PricesHome)
	}

	if ds, err := ParseDecisions(nil); err != nil || ds != nil {
		t.Errorf("empty = %v, %v", ds, err)
	}
}

func TestGameLifecycle(t *testing.T) {
	s := newTestServer(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/games", `{"players":2,"seed":11}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	created := decode[gameSummary](t, rec)
	if created.ID == "" || len(created.Companies) != 2 {
		t.Fatalf("created = %+v", created)
	}
	base := "/api/v1/games/" + created.ID

	rec = do(t, h, http.MethodPost, base+"/step", `{"decisions":[{},{"prices_home":[120,130,150]}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("step status = %d: %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodPost, base+"/step", `{"decisions":[{}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete step status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodGet, base, "")
	if got := decode[gameSummary](t, rec); got.Quarters != 1 || got.Economy.Quarter != 2 {
		t.Errorf("summary quarters = %d, economy Q%d", got.Quarters, got.Economy.Quarter)
	}

	rec = do(t, h, http.MethodGet, base+"/reports?company=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reports status = %d", rec.Code)
	}
	reps := decode[struct {
		Reports []report.ManagementReport `json:"reports"`
	}](t, rec)
	if len(reps.Reports) != 1 || reps.Reports[0].CompanyIndex != 1 {
		t.Errorf("reports = %+v", reps.Reports)
	}

	rec = do(t, h, http.MethodGet, base+"/reports?company=9", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range company status = %d", rec.Code)
	}
}

func TestGameReloadsFromDatabase(t *testing.T) {
	s := newTestServer(t, true)
	h := s.Handler()
	created := decode[gameSummary](t, do(t, h, http.MethodPost, "/api/v1/games", `{"seed":5}`))
	do(t, h, http.MethodPost, "/api/v1/games/"+created.ID+"/step", "")

	fresh := &Server{DB: s.DB, RateLimit: 1000}
	rec := do(t, fresh.Handler(), http.MethodGet, "/api/v1/games/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[gameSummary](t, rec); got.Quarters != 1 {
		t.Errorf("quarters = %d, want 1", got.Quarters)
	}
}

func TestUnknownGame(t *testing.T) {
	for _, withDB := range []bool{false, true} {
		h := newTestServer(t, withDB).Handler()
		if rec := do(t, h, http.MethodGet, "/api/v1/games/nope", ""); rec.Code != http.StatusNotFound {
			t.Errorf("db=%v status = %d, want 404", withDB, rec.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, false)
	s.RateLimit = 2
	h := s.Handler()
	for i := range 2 {
		if rec := do(t, h, http.MethodPost, "/api/v1/simulate", `{}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodPost, "/api/v1/simulate", `{}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("expected one request per window")
	}
	if !rl.Allow("b") {
		t.Error("limits should be per client")
	}
	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("window should reset")
	}
	now = now.Add(5 * time.Minute)
	rl.Cleanup()
	if len(rl.buckets) != 0 {
		t.Errorf("buckets = %d after cleanup", len(rl.buckets))
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(r); got != "10.0.0.1" {
		t.Errorf("clientIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if got := clientIP(r); got != "1.2.3.4" {
		t.Errorf("clientIP = %q", got)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, false)
	s.Origins = []string{"https://topaz.example"}
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate", nil)
	req.Header.Set("Origin", "https://topaz.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://topaz.example" {
		t.Error("origin not allowed")
	}
}

func TestStreamBroadcastsClosedQuarter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestServer(t, false)
	s.Hub = NewHub()
	go s.Hub.Run(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	created := decode[gameSummary](t, do(t, s.Handler(), http.MethodPost, "/api/v1/games", `{}`))
	resp, err := http.Post(srv.URL+"/api/v1/games/"+created.ID+"/step", "application/json", nil)
	if err == nil {
		resp.Body.Close()
	}
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("step: %v %v", err, resp)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		Payload struct {
			GameID string            `json:"game_id"`
			Result engine.StepResult `json:"result"`
		} `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "quarter_closed" || msg.Payload.GameID != created.ID || msg.Payload.Result.Quarter != 1 {
		t.Errorf("message = %s %s Q%d", msg.Type, msg.Payload.GameID, msg.Payload.Result.Quarter)
	}
}
