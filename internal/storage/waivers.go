package storage

import (
	"database/sql"
	"time"
)

type Waiver struct {
	ID           int64      `json:"id"`
	CheckpointID string     `json:"checkpoint_id"`
	FileGlob     string     `json:"file_glob,omitempty"`
	PatternSub   string     `json:"pattern_sub,omitempty"`
	Reason       string     `json:"reason"`
	ExpiresAt    time.Time  `json:"expires_at"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

func (db *DB) CreateWaiver(checkpointID, fileGlob, pattern, reason, createdBy string, expires time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO waivers(checkpoint_id, file_glob, pattern_sub, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?,?,?)`,
		checkpointID, nz(fileGlob), nz(pattern), reason, expires.UTC().Format(time.RFC3339Nano), createdBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RevokeWaiver marks a waiver revoked. The revoker is recorded in audit.
func (db *DB) RevokeWaiver(id int64, by string) error {
	return execOne(db.conn, `UPDATE waivers SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
}

func (db *DB) ListWaivers(activeOnly bool) ([]Waiver, error) {
	q := `
SELECT id, checkpoint_id, COALESCE(file_glob,''), COALESCE(pattern_sub,''),
       reason, expires_at, created_by, created_at, revoked_at
FROM waivers`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Waiver
	for rows.Next() {
		var (
			w           Waiver
			exp, ca, ra sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.CheckpointID, &w.FileGlob, &w.PatternSub, &w.Reason, &exp, &w.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		w.ExpiresAt = parseTS(exp)
		w.CreatedAt = parseTS(ca)
		if ra.Valid {
			t := parseTS(ra)
			w.RevokedAt = &t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func parseTS(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s.String)
	return t
}

func nz(s string) any {
	if s == "" {
		return nil
	}
	return s
}
