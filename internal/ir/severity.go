package ir

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSeverity = errors.New("unknown severity")

type Severity string

const (
	Critical Severity = "CRITICAL"
	High     Severity = "HIGH"
	Medium   Severity = "MEDIUM"
	Low      Severity = "LOW"
	Info     Severity = "INFO"
)

// Severities lists every level, highest first.
func Severities() []Severity {
	return []Severity{Critical, High, Medium, Low, Info}
}

func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToUpper(strings.TrimSpace(s))); sev {
	case Critical, High, Medium, Low, Info:
		return sev, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}

// Rank orders severities: CRITICAL=5 ... INFO=1, unknown=0.
func (s Severity) Rank() int {
	switch s {
	case Critical:
		return 5
	case High:
		return 4
	case Medium:
		return 3
	case Low:
		return 2
	case Info:
		return 1
	}
	return 0
}

func (s Severity) Valid() bool { return s.Rank() > 0 }

func (s Severity) AtLeast(o Severity) bool { return s.Rank() >= o.Rank() }

// Shift moves s by n levels (positive escalates), clamped to [lo, CRITICAL].
func (s Severity) Shift(n int, lo Severity) Severity {
	r := s.Rank() + n
	if r < lo.Rank() {
		r = lo.Rank()
	}
	if r > Critical.Rank() {
		r = Critical.Rank()
	}
	return fromRank(r)
}

func fromRank(r int) Severity {
	switch r {
	case 5:
		return Critical
	case 4:
		return High
	case 3:
		return Medium
	case 2:
		return Low
	case 1:
		return Info
	}
	return ""
}

func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

func (s *Severity) UnmarshalText(b []byte) error {
	sev, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
