package rules

import (
	"sort"

	"github.com/codewithboateng/oversight/internal/ir"
)

type Settings struct {
	SeverityThreshold ir.Severity
	Disabled          map[string]bool
}

func defaultSettings() Settings {
	return Settings{
		SeverityThreshold: ir.Info,
		Disabled:          map[string]bool{},
	}
}

func (r *Registry) SetSettings(s Settings) {
	// fill defaults
	if !s.SeverityThreshold.Valid() {
		s.SeverityThreshold = ir.Info
	}
	disabled := make(map[string]bool, len(s.Disabled))
	for id, off := range s.Disabled {
		if off {
			disabled[normID(id)] = true
		}
	}
	s.Disabled = disabled

	r.mu.Lock()
	r.settings = s
	r.mu.Unlock()
}

func (r *Registry) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// SeverityOK reports whether sev meets the configured threshold.
func (r *Registry) SeverityOK(sev ir.Severity) bool {
	return sev.AtLeast(r.Settings().SeverityThreshold)
}

// DisabledList returns the disabled ids, for recording in a run context.
func (s Settings) DisabledList() []string {
	var out []string
	for id := range s.Disabled {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
