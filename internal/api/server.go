package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/reporting"
	"github.com/codewithboateng/oversight/internal/rules"
	"github.com/codewithboateng/oversight/internal/storage"
)

// Store is the minimal contract the API needs.
type Store interface {
	ListRuns(limit, offset int) ([]storage.RunRow, error)
	LoadRun(id string) (ir.Run, error)
	LoadLatestRun() (ir.Run, error)
	ListFindings(runID string, minSeverity ir.Severity) ([]ir.Finding, error)

	ListWaivers(activeOnly bool) ([]storage.Waiver, error)
	CreateWaiver(checkpointID, fileGlob, pattern, reason, createdBy string, expires time.Time) (int64, error)
	RevokeWaiver(id int64, by string) error
}

// UserStore is the auth/audit contract the API uses.
type UserStore interface {
	GetUserByUsername(string) (storage.User, string, error)
	CreateSession(int64, string, time.Time) error
	GetSession(string) (storage.User, error)
	DeleteSession(string) error
	LogAudit(username, action, resource string, meta map[string]any) error
	ListAudit(limit int) ([]storage.AuditEntry, error)
}

type Server struct {
	DB              Store
	UserStore       UserStore
	Registry        *rules.Registry
	Logger          *zap.Logger
	AllowedOrigins  []string
	SessionDuration time.Duration
}

func (s *Server) Routes() http.Handler {
	if s.Logger == nil {
		s.Logger = zap.L()
	}
	if s.SessionDuration <= 0 {
		s.SessionDuration = 12 * time.Hour
	}
	mux := http.NewServeMux()

	withCORS := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if origin := s.pickCORSOrigin(r); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS, POST")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				if origin != "*" {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("GET /api/v1/health", withCORS(s.handleHealth))

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", withCORS(s.handleLogin))
	mux.HandleFunc("POST /api/v1/auth/logout", withCORS(withAuth(s, s.handleLogout, "auth:logout")))
	mux.HandleFunc("GET /api/v1/me", withCORS(withAuth(s, s.handleMe, "me")))

	// Runs
	mux.HandleFunc("GET /api/v1/runs", withCORS(s.handleListRuns))
	mux.HandleFunc("GET /api/v1/runs/latest", withCORS(s.handleGetLatest))
	mux.HandleFunc("GET /api/v1/runs/{id}", withCORS(s.handleGetRun))
	mux.HandleFunc("GET /api/v1/runs/{id}/findings", withCORS(s.handleListFindings))
	mux.HandleFunc("GET /api/v1/runs/{id}/report.md", withCORS(s.handleRunMarkdown))

	// Checkpoint inventory
	mux.HandleFunc("GET /api/v1/checkpoints", withCORS(s.handleCheckpoints))

	// Waivers
	mux.HandleFunc("GET /api/v1/waivers", withCORS(withAuth(s, s.handleListWaivers, "waivers:list")))
	mux.HandleFunc("POST /api/v1/waivers", withCORS(withAdmin(s, s.handleCreateWaiver, "waivers:create")))
	mux.HandleFunc("POST /api/v1/waivers/{id}/revoke", withCORS(withAdmin(s, s.handleRevokeWaiver, "waivers:revoke")))

	// Audit
	mux.HandleFunc("GET /api/v1/audit", withCORS(withAdmin(s, s.handleListAudit, "audit:list")))

	mux.HandleFunc("/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	return mux
}

func (s *Server) pickCORSOrigin(r *http.Request) string {
	if len(s.AllowedOrigins) == 0 {
		return ""
	}
	origin := r.Header.Get("Origin")
	for _, ao := range s.AllowedOrigins {
		if ao == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(origin, ao) {
			return origin
		}
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := max(parseInt(q.Get("offset"), 0), 0)

	rows, err := s.DB.ListRuns(limit, offset)
	if err != nil {
		s.dbErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadLatestRun()
	if err != nil {
		s.err(w, http.StatusNotFound, "no runs")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadRun(r.PathValue("id"))
	if err != nil {
		s.err(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	minSev := ir.Low
	if v := r.URL.Query().Get("min_severity"); v != "" {
		sev, err := ir.ParseSeverity(v)
		if err != nil {
			s.err(w, http.StatusBadRequest, err.Error())
			return
		}
		minSev = sev
	}
	items, err := s.DB.ListFindings(id, minSev)
	if err != nil {
		s.dbErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": id, "min_severity": minSev, "items": items,
	})
}

func (s *Server) handleRunMarkdown(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadRun(r.PathValue("id"))
	if err != nil {
		s.err(w, http.StatusNotFound, "run not found")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := reporting.RenderMarkdown(w, &run); err != nil {
		s.Logger.Warn("write markdown", zap.String("run", run.ID), zap.Error(err))
	}
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func (s *Server) dbErr(w http.ResponseWriter, r *http.Request, err error) {
	s.Logger.Error("db error", zap.String("path", r.URL.Path), zap.Error(err))
	s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

var errNoSession = errors.New("no session")
