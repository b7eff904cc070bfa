package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/codewithboateng/oversight/internal/ir"
)

// ListRuns returns a lightweight list of runs with counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.source, r.ir_version,
		       (SELECT COUNT(1) FROM findings f WHERE f.run_id = r.id) AS findings
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.Source, &rr.IRVersion, &rr.Findings); err != nil {
			return nil, err
		}
		// Parse RFC3339Nano first, fallback to RFC3339
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListFindings returns findings for a run at or above a minimum severity,
// in report order.
func (db *DB) ListFindings(runID string, minSeverity ir.Severity) ([]ir.Finding, error) {
	if !minSeverity.Valid() {
		minSeverity = ir.Info
	}
	const q = `
		SELECT id, checkpoint_id, severity, title, agent_id, file, line_start, line_end,
		       category, evidence, recommendation, manual_review, merged_from
		  FROM findings
		 WHERE run_id = ?
		   AND severity_rank >= ?
		 ORDER BY severity_rank DESC, file, line_start, category, title, id`
	rows, err := db.conn.Query(q, runID, minSeverity.Rank())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ir.Finding
	for rows.Next() {
		var (
			f      ir.Finding
			sev    string
			manual int
			merged string
		)
		if err := rows.Scan(&f.ID, &f.CheckpointID, &sev, &f.Title, &f.AgentID, &f.File,
			&f.Lines.Start, &f.Lines.End, &f.Category, &f.Evidence, &f.Recommendation,
			&manual, &merged); err != nil {
			return nil, err
		}
		f.Severity = ir.Severity(sev)
		f.ManualReview = manual != 0
		if merged != "" {
			f.MergedFrom = strings.Split(merged, ",")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
