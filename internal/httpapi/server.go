package httpapi

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

	"github.com/getsentry/sentry-go"
	"golang.org/x/time/rate"

	"yarsdash/internal/analyze"
	"yarsdash/internal/config"
	"yarsdash/internal/dashboard"
	"yarsdash/internal/dispatch"
	"yarsdash/internal/metrics"
	"yarsdash/internal/news"
	"yarsdash/internal/snapshot"
	"yarsdash/internal/store"
)

const (
	maxBodyBytes     = 1 << 20
	msgMissingPrompt = "Missing prompt in request body"
	msgTriggered     = "Scraper triggered"
)

// Analyzer forwards a prompt to the completion API.
type Analyzer interface {
	CheckCredentials() error
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Dispatcher starts the remote scrape workflow.
type Dispatcher interface {
	Trigger(ctx context.Context) error
}

// Headliner returns recent headlines for a symbol.
type Headliner interface {
	Headlines(ctx context.Context, symbol string) []news.Article
}

var (
	_ Analyzer   = (*analyze.Client)(nil)
	_ Dispatcher = (*dispatch.Client)(nil)
	_ Headliner  = (*news.Fetcher)(nil)
)

// Deps are the collaborators of a DashboardServer. Archive, Actions and News
// may be nil; the matching routes then answer with empty lists.
type Deps struct {
	Analyzer   Analyzer
	Dispatcher Dispatcher
	News       Headliner
	Archive    store.ArchiveStore
	Actions    store.ActionStore
}

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	snapshotPath string
	opts         dashboard.Options
	deps         Deps
	limiter      *rate.Limiter
	log          *slog.Logger
}

// NewDashboardServer creates a new dashboard HTTP server.
func NewDashboardServer(cfg *config.Config, deps Deps, log *slog.Logger) *DashboardServer {
	opts, err := Options(cfg.Dashboard)
	if err != nil {
		log.Warn("dashboard options", "error", err)
	}

	limit := rate.Inf
	if cfg.Limits.ActionsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.Limits.ActionsPerMinute) / 60)
	}
	burst := cfg.Limits.Burst
	if burst <= 0 {
		burst = 1
	}

	return &DashboardServer{
		snapshotPath: cfg.Storage.SnapshotPath,
		opts:         opts,
		deps:         deps,
		limiter:      rate.NewLimiter(limit, burst),
		log:          log.With("component", "httpapi"),
	}
}

// Options maps the dashboard config section onto view options. The returned
// options are usable even when the timezone fails to load.
func Options(cfg config.Dashboard) (dashboard.Options, error) {
	loc, err := cfg.Location()

	palette := dashboard.DefaultPalette()
	for name, color := range cfg.Palette {
		palette.Subreddits[name] = color
	}
	if cfg.DefaultColor != "" {
		palette.Default = cfg.DefaultColor
	}
	if len(cfg.SectorColors) > 0 {
		palette.Sectors = cfg.SectorColors
	}

	return dashboard.Options{
		TopTickers:    cfg.TopTickers,
		MatrixTickers: cfg.MatrixTickers,
		TopPosts:      cfg.TopPosts,
		TitleLength:   cfg.TitleLength,
		Location:      loc,
		Palette:       palette,
	}, err
}

// RegisterRoutes registers all API routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/posts", s.handlePosts)
	mux.HandleFunc("GET /api/ticker-detail", s.handleTickerDetail)
	mux.HandleFunc("GET /api/tickers/{symbol}/history", s.handleHistory)
	mux.HandleFunc("GET /api/tickers/{symbol}/news", s.handleNews)
	mux.HandleFunc("GET /api/archive/dates", s.handleDates)
	mux.HandleFunc("GET /api/actions", s.handleActions)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/trigger-scrape", s.handleTriggerScrape)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
}

// Handler returns an http.Handler with CORS and request logging.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logMiddleware(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *DashboardServer) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// The mux fills in Pattern on the shared request.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(route, r.Method, rec.status, elapsed)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", elapsed)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServerError reports err to Sentry before answering. Sentry calls are
// no-ops when no client was initialized.
func writeServerError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		sentry.CaptureException(err)
	}
	writeError(w, status, err.Error())
}

// loadSnapshot reads the snapshot fresh from disk. On failure it writes the
// error response and returns nil.
func (s *DashboardServer) loadSnapshot(w http.ResponseWriter) *snapshot.Snapshot {
	snap, err := snapshot.Load(s.snapshotPath)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			metrics.RecordSnapshotLoad("not_found", 0, time.Time{})
			writeError(w, http.StatusNotFound, "snapshot not found")
			return nil
		}
		metrics.RecordSnapshotLoad("error", 0, time.Time{})
		s.log.Error("loading snapshot", "path", s.snapshotPath, "error", err)
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return nil
	}

	issues := snapshot.Validate(snap)
	for _, is := range issues {
		s.log.Warn("snapshot issue", "field", is.Field, "message", is.Message)
	}
	metrics.RecordSnapshotLoad("success", len(issues), snap.ScrapedTime())
	return snap
}

func (s *DashboardServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.loadSnapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, dashboard.Build(snap, s.opts))
}

func (s *DashboardServer) handlePosts(w http.ResponseWriter, r *http.Request) {
	snap := s.loadSnapshot(w)
	if snap == nil {
		return
	}
	by := dashboard.ParsePostSort(r.URL.Query().Get("sort"))
	limit := s.opts.TopPosts
	if limit <= 0 {
		limit = dashboard.DefaultTopPosts
	}
	writeJSON(w, PostsResponse{Sort: by, Posts: dashboard.TopPosts(snap.Posts, by, limit)})
}

func (s *DashboardServer) handleTickerDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ticker := q.Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}
	snap := s.loadSnapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, dashboard.SelectTicker(snap.TickerDetails, dashboard.Selection(q.Get("selected")), ticker))
}

func symbolParam(r *http.Request) string {
	return strings.ToUpper(dashboard.PlainTicker(r.PathValue("symbol")))
}

func (s *DashboardServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	resp := HistoryResponse{Symbol: symbol, Points: []store.MentionPoint{}}
	if s.deps.Archive != nil {
		points, err := s.deps.Archive.MentionHistory(r.Context(), symbol)
		if err != nil {
			s.log.Error("mention history", "symbol", symbol, "error", err)
			writeServerError(w, http.StatusInternalServerError, err)
			return
		}
		if points != nil {
			resp.Points = points
		}
	}
	writeJSON(w, resp)
}

func (s *DashboardServer) handleNews(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	resp := NewsResponse{Symbol: symbol, Articles: []news.Article{}}
	if s.deps.News != nil {
		resp.Articles = s.deps.News.Headlines(r.Context(), symbol)
	}
	writeJSON(w, resp)
}

func (s *DashboardServer) handleDates(w http.ResponseWriter, r *http.Request) {
	resp := DatesResponse{Dates: []string{}}
	if s.deps.Archive != nil {
		dates, err := s.deps.Archive.ListDates(r.Context())
		if err != nil {
			s.log.Error("listing archive dates", "error", err)
			writeServerError(w, http.StatusInternalServerError, err)
			return
		}
		if dates != nil {
			resp.Dates = dates
		}
	}
	writeJSON(w, resp)
}

func (s *DashboardServer) handleActions(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = store.DefaultActionLimit
	}
	resp := ActionsResponse{Actions: []store.Action{}}
	if s.deps.Actions != nil {
		actions, err := s.deps.Actions.ListActions(r.Context(), limit)
		if err != nil {
			s.log.Error("listing actions", "error", err)
			writeServerError(w, http.StatusInternalServerError, err)
			return
		}
		if actions != nil {
			resp.Actions = actions
		}
	}
	writeJSON(w, resp)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := os.Stat(s.snapshotPath)
	writeJSON(w, HealthResponse{Status: "ok", Snapshot: err == nil})
}

// allow applies the shared action rate limit, answering 429 when exhausted.
func (s *DashboardServer) allow(w http.ResponseWriter, r *http.Request, kind store.ActionKind) bool {
	if s.limiter.Allow() {
		return true
	}
	metrics.RecordThrottled(string(kind))
	s.recordAction(r.Context(), kind, false, http.StatusTooManyRequests, "rate limit exceeded")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

// recordAction appends to the action log. Failures are logged only.
func (s *DashboardServer) recordAction(ctx context.Context, kind store.ActionKind, success bool, status int, msg string) {
	if s.deps.Actions == nil {
		return
	}
	a := &store.Action{
		Kind:    kind,
		Success: success,
		Status:  status,
		Message: msg,
	}
	if err := s.deps.Actions.RecordAction(context.WithoutCancel(ctx), a); err != nil {
		s.log.Warn("recording action", "kind", kind, "error", err)
	}
}

func (s *DashboardServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, store.ActionAnalyze) {
		return
	}
	if s.deps.Analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis not available")
		return
	}

	if err := s.deps.Analyzer.CheckCredentials(); err != nil {
		s.log.Error("analyze", "error", err)
		s.recordAction(r.Context(), store.ActionAnalyze, false, http.StatusInternalServerError, err.Error())
		writeServerError(w, http.StatusInternalServerError, err)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingPrompt)
		return
	}
	prompt, ok := req.Prompt.(string)
	if !ok || prompt == "" {
		writeError(w, http.StatusBadRequest, msgMissingPrompt)
		return
	}

	start := time.Now()
	analysis, err := s.deps.Analyzer.Analyze(r.Context(), prompt)
	metrics.RecordAction(string(store.ActionAnalyze), time.Since(start), err)
	if err != nil {
		s.log.Error("analyze", "error", err)
		s.recordAction(r.Context(), store.ActionAnalyze, false, http.StatusInternalServerError, err.Error())
		writeServerError(w, http.StatusInternalServerError, err)
		return
	}

	s.recordAction(r.Context(), store.ActionAnalyze, true, http.StatusOK, "analysis completed")
	writeJSON(w, AnalyzeResponse{Analysis: analysis})
}

func (s *DashboardServer) handleTriggerScrape(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, store.ActionTriggerScrape) {
		return
	}
	if s.deps.Dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "scrape trigger not available")
		return
	}

	start := time.Now()
	err := s.deps.Dispatcher.Trigger(r.Context())
	metrics.RecordAction(string(store.ActionTriggerScrape), time.Since(start), err)
	if err != nil {
		status := http.StatusInternalServerError
		var upstream *dispatch.UpstreamError
		if errors.As(err, &upstream) {
			status = upstream.Status
		}
		s.log.Error("trigger scrape", "status", status, "error", err)
		s.recordAction(r.Context(), store.ActionTriggerScrape, false, status, err.Error())
		writeServerError(w, status, err)
		return
	}

	s.recordAction(r.Context(), store.ActionTriggerScrape, true, http.StatusOK, msgTriggered)
	writeJSON(w, TriggerResponse{Success: true, Message: msgTriggered})
}
