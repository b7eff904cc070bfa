package api

import (
	"net/http"
	"strings"

	"github.com/codewithboateng/oversight/internal/rules"
)

type checkpointMeta struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Category        string   `json:"category"`
	Agent           string   `json:"agent,omitempty"`
	DefaultSeverity string   `json:"default_severity"`
	Detector        string   `json:"detector"`
	FileTypes       []string `json:"file_types,omitempty"`
	Reference       string   `json:"reference,omitempty"`
	Pack            string   `json:"pack"`
}

// GET /api/v1/checkpoints[?category=...] lists enabled checkpoints.
func (s *Server) handleCheckpoints(w http.ResponseWriter, r *http.Request) {
	reg := s.Registry
	if reg == nil {
		reg = rules.Builtin()
	}
	cat := strings.TrimSpace(r.URL.Query().Get("category"))
	out := []checkpointMeta{}
	for _, cp := range reg.List() {
		if cat != "" && !strings.EqualFold(cat, cp.Category) {
			continue
		}
		out = append(out, checkpointMeta{
			ID:              cp.ID,
			Title:           cp.Title,
			Category:        cp.Category,
			Agent:           cp.AgentID,
			DefaultSeverity: string(cp.DefaultSeverity),
			Detector:        string(cp.Detector.Kind),
			FileTypes:       cp.FileTypes,
			Reference:       cp.Reference,
			Pack:            cp.Pack,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}
