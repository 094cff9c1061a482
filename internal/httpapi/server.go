package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/store"
	"github.com/hamed0406/uptimemonitor/internal/tracker"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Server exposes a read-only view of the monitor: current state and the
// stored check history. It never mutates anything.
type Server struct {
	log     *zap.Logger
	url     string
	results store.ResultStore
	track   *tracker.Tracker
}

func NewServer(log *zap.Logger, url string, results store.ResultStore, track *tracker.Tracker) *Server {
	return &Server{log: log, url: url, results: results, track: track}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(120, 60))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/checks/recent", s.handleRecent)
	r.Get("/api/checks/{date}", s.handleByDate)

	return r
}

type statusResponse struct {
	tracker.Snapshot
	Latest *domain.ProbeResult `json:"latest"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Snapshot: s.track.Snapshot()}

	rows, err := s.results.Recent(r.Context(), s.url, 1)
	if err != nil {
		s.log.Error("status_query_failed", zap.Error(err))
		http.Error(w, "query error", http.StatusInternalServerError)
		return
	}
	if len(rows) > 0 {
		resp.Latest = &rows[0]
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.results.Recent(r.Context(), s.url, limit)
	if err != nil {
		s.log.Error("recent_query_failed", zap.Error(err))
		http.Error(w, "query error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []domain.ProbeResult{}
	}
	s.writeJSON(w, rows)
}

func (s *Server) handleByDate(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), time.Local)
	if err != nil {
		http.Error(w, "bad date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	rows, err := s.results.ByDate(r.Context(), s.url, day)
	if err != nil {
		s.log.Error("checks_query_failed", zap.Error(err))
		http.Error(w, "query error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []domain.ProbeResult{}
	}
	s.writeJSON(w, rows)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode_response_failed", zap.Error(err))
	}
}
