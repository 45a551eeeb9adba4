package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/michaelscutari/foldercap/internal/entry"
	"github.com/michaelscutari/foldercap/internal/scan"
)

// LoadFound loads found directories. sortBy is "seq" (scan order, the
// default), "size" (largest first) or "path".
func LoadFound(db *sql.DB, sortBy string, limit int) ([]entry.Found, error) {
	orderClause := "seq ASC"
	switch sortBy {
	case "size":
		orderClause = "size DESC, seq ASC"
	case "path":
		orderClause = "path ASC"
	}
	if limit <= 0 {
		limit = -1
	}

	query := fmt.Sprintf(`
		SELECT seq, path, timestamp, size, truncated
		FROM found
		ORDER BY %s
		LIMIT ?
	`, orderClause)

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []entry.Found
	for rows.Next() {
		var f entry.Found
		var ts, size int64
		var truncated int
		if err := rows.Scan(&f.Seq, &f.Path, &ts, &size, &truncated); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		f.Timestamp = time.Unix(ts, 0)
		f.Size = uint64(size)
		f.Truncated = truncated != 0
		out = append(out, f)
	}

	return out, rows.Err()
}

// LoadLog loads recorded log lines in scan order. When kinds is non-empty
// only those kinds are returned.
func LoadLog(db *sql.DB, limit int, kinds ...scan.LogKind) ([]entry.LogLine, error) {
	if limit <= 0 {
		limit = -1
	}

	where := ""
	queryArgs := make([]any, 0, len(kinds)+1)
	if len(kinds) > 0 {
		marks := make([]string, len(kinds))
		for i, k := range kinds {
			marks[i] = "?"
			queryArgs = append(queryArgs, k.String())
		}
		where = "WHERE kind IN (" + strings.Join(marks, ", ") + ")"
	}
	queryArgs = append(queryArgs, limit)

	query := fmt.Sprintf(`SELECT seq, kind, path, message FROM scan_log %s ORDER BY seq ASC LIMIT ?`, where)
	rows, err := db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []entry.LogLine
	for rows.Next() {
		var l entry.LogLine
		var kind string
		if err := rows.Scan(&l.Seq, &kind, &l.Path, &l.Message); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		l.Kind = scan.ParseLogKind(kind)
		out = append(out, l)
	}

	return out, rows.Err()
}

// GetScanMeta retrieves scan metadata.
func GetScanMeta(db *sql.DB) (*entry.ScanMeta, error) {
	var m entry.ScanMeta
	var mode, state string
	var threshold, startTime, endTime int64

	err := db.QueryRow(`
		SELECT root_path, mode, reference_date, horizon, size_mb, threshold_bytes,
		       start_time, COALESCE(end_time, 0), COALESCE(state, ''),
		       found_count, skip_count, error_count
		FROM scan_meta WHERE id = 1
	`).Scan(&m.RootPath, &mode, &m.ReferenceDate, &m.Horizon, &m.SizeMB, &threshold,
		&startTime, &endTime, &state, &m.FoundCount, &m.SkipCount, &m.ErrorCount)

	if err != nil {
		return nil, err
	}

	m.Mode, err = scan.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	m.ThresholdBytes = uint64(threshold)
	m.StartTime = time.Unix(startTime, 0)
	if endTime > 0 {
		m.EndTime = time.Unix(endTime, 0)
	}
	m.State = scan.ParseState(state)

	return &m, nil
}
