// Package api provides the HTTP API for observing and driving the city.
// GET endpoints are public (read-only observation).
// POST play endpoints (paint, step, run, focus) require the bearer token when
// one is configured; admin endpoints (reset, progress, snapshot) always do.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/microcity/internal/engine"
	"github.com/talgya/microcity/internal/persistence"
	"github.com/talgya/microcity/internal/progress"
	"github.com/talgya/microcity/internal/render"
	"github.com/talgya/microcity/internal/skyline"
	"github.com/talgya/microcity/internal/tasks"
	"github.com/talgya/microcity/internal/world"
)

const (
	maxStreams  = 8
	maxStepDays = 365
)

// Server serves the city over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Tracker  *progress.Tracker // nil = progress endpoints disabled
	Tasks    *tasks.Client     // nil or tokenless = tasks endpoint disabled
	DB       *persistence.DB   // nil = snapshot endpoint disabled
	Listen   string
	AdminKey string // Bearer token for POST endpoints. Empty = play endpoints open, admin disabled.

	paintLimiter *RateLimiter
	upgrader     websocket.Upgrader
	streams      chan struct{}
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.paintLimiter == nil {
		s.paintLimiter = NewRateLimiter(600, time.Minute)
	}
	if s.streams == nil {
		s.streams = make(chan struct{}, maxStreams)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/render.png", s.handleRenderPNG)
	mux.HandleFunc("/api/v1/ascii", s.handleASCII)
	mux.HandleFunc("/api/v1/skyline", s.handleSkyline)
	mux.HandleFunc("/api/v1/tasks", s.handleTasks)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Play endpoints.
	mux.HandleFunc("/api/v1/paint", s.playOnly(RateLimitMiddleware(s.paintLimiter, s.handlePaint)))
	mux.HandleFunc("/api/v1/step", s.playOnly(s.handleStep))
	mux.HandleFunc("/api/v1/run", s.playOnly(s.handleRun))
	mux.HandleFunc("/api/v1/focus", s.playOnly(s.handleFocus))

	// Admin endpoints.
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/progress", s.adminOnly(s.handleProgress))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.AdminKey == "" {
		slog.Warn("no admin key set: play endpoints are open, admin endpoints disabled")
	}
	srv := &http.Server{
		Addr:              s.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Listen, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// playOnly requires POST, plus the bearer token when one is configured.
func (s *Server) playOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// adminOnly requires POST and the bearer token. Without a configured key the
// endpoint is disabled.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no MICROCITY_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type statsView struct {
	engine.Stats
	DisplayPollution int `json:"display_pollution"`
	DisplayHappiness int `json:"display_happiness"`
	Unemployed       int `json:"unemployed"`
}

func viewStats(st engine.Stats) statsView {
	return statsView{
		Stats:            st,
		DisplayPollution: st.DisplayPollution(),
		DisplayHappiness: st.DisplayHappiness(),
		Unemployed:       st.Unemployed(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":         "microcity",
		"profile":      s.Sim.Profile().Name,
		"day":          s.Sim.Day(),
		"stats":        viewStats(s.Sim.Stats()),
		"growth_bonus": s.Sim.GrowthBonus(),
		"running":      s.Eng != nil && s.Eng.Running(),
	}
	if s.Eng != nil {
		status["ticks"] = s.Eng.Ticks()
	}
	if money, ok := s.Sim.Money(); ok {
		status["money"] = money
	}
	if s.Tracker != nil {
		p := s.Tracker.Progress()
		status["progress"] = p
		if s.Sim.Profile().ToolUnlocks {
			status["locked_tools"] = p.Locked()
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, viewStats(s.Sim.Stats()))
}

// handleGrid returns the grid as flat row-major kind and level arrays plus
// the colour palette.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()
	kinds, levels := st.Grid.Cells()
	codes := make([]int, len(kinds))
	for i, k := range kinds {
		codes[i] = int(k)
	}
	palette := make(map[string]string, len(world.Kinds()))
	for _, k := range world.Kinds() {
		palette[k.String()] = world.Color(k)
	}
	writeJSON(w, map[string]any{
		"size":    world.Size,
		"day":     st.Day,
		"kinds":   codes,
		"levels":  levels,
		"palette": palette,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	writeJSON(w, s.Sim.Events(limit))
}

func (s *Server) handleRenderPNG(w http.ResponseWriter, r *http.Request) {
	cell := render.DefaultCell
	if v := r.URL.Query().Get("cell"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 8 || n > 64 {
			http.Error(w, "cell must be 8-64", http.StatusBadRequest)
			return
		}
		cell = n
	}
	st := s.Sim.Snapshot()
	w.Header().Set("Content-Type", "image/png")
	if err := render.PNG(w, st.Grid, cell); err != nil {
		slog.Error("png render failed", "error", err)
	}
}

func (s *Server) handleASCII(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(render.ASCII(st.Grid)))
}

func (s *Server) handleSkyline(w http.ResponseWriter, r *http.Request) {
	total := 0
	if s.Tracker != nil {
		total = s.Tracker.Progress().TotalXP
	}
	v := skyline.Render(total)
	writeJSON(w, map[string]any{
		"stage":    v.Index,
		"label":    v.Label,
		"caption":  v.Caption(),
		"art":      v.Art,
		"total_xp": v.TotalXP,
	})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if s.Tasks == nil || !s.Tasks.Enabled() {
		http.Error(w, "tasks disabled (no CANVAS_TOKEN set)", http.StatusServiceUnavailable)
		return
	}
	limit := 3
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	list, err := s.Tasks.Todo(r.Context())
	if err != nil {
		slog.Warn("to-do fetch failed", "error", err)
		http.Error(w, "upstream to-do request failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, tasks.Top(list, limit))
}

func (s *Server) handlePaint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row   int    `json:"row"`
		Col   int    `json:"col"`
		Tool  string `json:"tool"`
		Brush bool   `json:"brush"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	res := s.Sim.Paint(world.Coord{Row: req.Row, Col: req.Col}, world.ParseTool(req.Tool), req.Brush)
	writeJSON(w, res)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int `json:"days"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}
	if req.Days == 0 {
		req.Days = 1
	}
	if req.Days < 0 || req.Days > maxStepDays {
		http.Error(w, "days must be 1-365", http.StatusBadRequest)
		return
	}
	var rep engine.StepReport
	for i := 0; i < req.Days; i++ {
		rep = s.Sim.Step()
	}
	writeJSON(w, rep)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "auto-step not available", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	switch req.Action {
	case "start":
		s.Eng.Start()
	case "stop":
		s.Eng.Stop()
	case "toggle", "":
		s.Eng.Toggle()
	default:
		http.Error(w, "unknown action (use: start, stop, toggle)", http.StatusBadRequest)
		return
	}
	slog.Info("auto-step changed", "running", s.Eng.Running())
	writeJSON(w, map[string]any{"running": s.Eng.Running(), "ticks": s.Eng.Ticks()})
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	if s.Tracker == nil {
		http.Error(w, "progress tracking not available", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Action  string `json:"action"`
		Minutes int    `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var t progress.Timer
	switch req.Action {
	case "start":
		d := progress.DefaultFocus
		if req.Minutes < 0 || req.Minutes > 240 {
			http.Error(w, "minutes must be 1-240", http.StatusBadRequest)
			return
		}
		if req.Minutes > 0 {
			d = time.Duration(req.Minutes) * time.Minute
		}
		t = s.Tracker.StartFocus(d)
	case "pause":
		t = s.Tracker.PauseFocus()
	case "resume":
		t = s.Tracker.ResumeFocus()
	case "reset":
		t = s.Tracker.ResetFocus()
	default:
		http.Error(w, "unknown action (use: start, pause, resume, reset)", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"timer":             t,
		"remaining_seconds": t.Remaining(time.Now()),
		"progress":          s.Tracker.Progress(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.Eng != nil {
		s.Eng.Stop()
	}
	s.Sim.Reset()
	writeJSON(w, map[string]any{
		"day":   s.Sim.Day(),
		"stats": viewStats(s.Sim.Stats()),
	})
}

// handleProgress replaces the stored progress fields or awards experience.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if s.Tracker == nil {
		http.Error(w, "progress tracking not available", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Fields map[string]string `json:"fields"`
		Award  int               `json:"award"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Award < 0 {
		http.Error(w, "award must be non-negative", http.StatusBadRequest)
		return
	}
	p := s.Tracker.Progress()
	if req.Fields != nil {
		p = s.Tracker.Set(req.Fields)
	}
	if req.Award > 0 {
		p = s.Tracker.Award(req.Award)
	}
	writeJSON(w, map[string]any{
		"progress":     p,
		"growth_bonus": s.Sim.GrowthBonus(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	var fields map[string]string
	if s.Tracker != nil {
		fields = s.Tracker.Fields()
	}
	if err := s.DB.SaveCityState(s.Sim, fields); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"day":     s.Sim.Day(),
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
