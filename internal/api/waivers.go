package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codewithboateng/oversight/internal/storage"
)

type waiverCreateReq struct {
	CheckpointID string `json:"checkpoint_id"`
	FileGlob     string `json:"file_glob,omitempty"`
	PatternSub   string `json:"pattern_sub,omitempty"`
	Reason       string `json:"reason"`
	ExpiresAt    string `json:"expires_at"` // RFC3339
}

func (s *Server) handleListWaivers(w http.ResponseWriter, r *http.Request) {
	active := r.URL.Query().Get("active")
	only := active == "1" || active == "true" || active == "yes"
	ws, err := s.DB.ListWaivers(only)
	if err != nil {
		s.dbErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": ws, "active_only": only})
}

func (s *Server) handleCreateWaiver(w http.ResponseWriter, r *http.Request) {
	var in waiverCreateReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.err(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.CheckpointID = strings.ToUpper(strings.TrimSpace(in.CheckpointID))
	if in.CheckpointID == "" || in.Reason == "" || in.ExpiresAt == "" {
		s.err(w, http.StatusBadRequest, "checkpoint_id, reason, expires_at required")
		return
	}
	if s.Registry != nil {
		if _, err := s.Registry.Lookup(in.CheckpointID); err != nil {
			s.err(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	exp, err := time.Parse(time.RFC3339, in.ExpiresAt)
	if err != nil {
		s.err(w, http.StatusBadRequest, "bad expires_at (use RFC3339)")
		return
	}
	if !exp.After(time.Now()) {
		s.err(w, http.StatusBadRequest, "expires_at is in the past")
		return
	}
	u, ok := userFromCtx(r.Context())
	if !ok {
		s.err(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := s.DB.CreateWaiver(in.CheckpointID, in.FileGlob, in.PatternSub, in.Reason, u.Username, exp)
	if err != nil {
		s.dbErr(w, r, err)
		return
	}
	_ = s.UserStore.LogAudit(u.Username, "waiver:create", "", map[string]any{"id": id, "checkpoint": in.CheckpointID})
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleRevokeWaiver(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.err(w, http.StatusBadRequest, "invalid id")
		return
	}
	u, ok := userFromCtx(r.Context())
	if !ok {
		s.err(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.DB.RevokeWaiver(id, u.Username); err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			s.err(w, http.StatusNotFound, "waiver not found or already revoked")
			return
		}
		s.dbErr(w, r, err)
		return
	}
	_ = s.UserStore.LogAudit(u.Username, "waiver:revoke", "", map[string]any{"id": id})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := clamp(parseInt(r.URL.Query().Get("limit"), 100), 1, 1000)
	items, err := s.UserStore.ListAudit(limit)
	if err != nil {
		s.dbErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit})
}
