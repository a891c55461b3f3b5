package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportStatus is the lifecycle state of a catalogued export.
type ExportStatus string

const (
	StatusRunning  ExportStatus = "running"
	StatusComplete ExportStatus = "complete"
	StatusFailed   ExportStatus = "failed"
)

// ErrNotFound is returned when no export has the requested ID.
var ErrNotFound = errors.New("export not found")

// ExportRecord is one row of the export catalog.
type ExportRecord struct {
	ExportID          string       `json:"export_id"`
	SessionID         string       `json:"session_id"`
	Path              string       `json:"path,omitempty"`
	Threshold         float64      `json:"threshold"`
	TotalPoints       int          `json:"total_points"`
	WrittenPoints     int          `json:"written_points"`
	Status            ExportStatus `json:"status"`
	Error             string       `json:"error,omitempty"`
	StartedUnixNanos  int64        `json:"started_unix_nanos"`
	FinishedUnixNanos int64        `json:"finished_unix_nanos,omitempty"`
}

// Catalog records export attempts.
type Catalog struct {
	db  *sql.DB
	now func() time.Time
}

// NewCatalog returns a catalog over an already migrated database.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db, now: time.Now}
}

// Insert records a running export. Empty ExportID and StartedUnixNanos are
// filled in.
func (c *Catalog) Insert(rec *ExportRecord) error {
	if rec.ExportID == "" {
		rec.ExportID = uuid.New().String()
	}
	if rec.StartedUnixNanos == 0 {
		rec.StartedUnixNanos = c.now().UnixNano()
	}
	rec.Status = StatusRunning

	return retryOnBusy(func() error {
		_, err := c.db.Exec(`
			INSERT INTO exports (
				export_id, session_id, path, threshold, total_points,
				written_points, status, error, started_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ExportID, rec.SessionID, rec.Path, rec.Threshold, rec.TotalPoints,
			rec.WrittenPoints, rec.Status, rec.Error, rec.StartedUnixNanos,
		)
		return err
	})
}

// Complete marks an export as finished and stores where it was written.
func (c *Catalog) Complete(exportID, path string, total, written int) error {
	return c.finish(exportID, StatusComplete, path, total, written, "")
}

// Fail marks an export as failed with the error that stopped it.
func (c *Catalog) Fail(exportID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return c.finish(exportID, StatusFailed, "", 0, 0, msg)
}

func (c *Catalog) finish(exportID string, status ExportStatus, path string, total, written int, msg string) error {
	var res sql.Result
	err := retryOnBusy(func() error {
		var err error
		res, err = c.db.Exec(`
			UPDATE exports
			SET status = ?, path = ?, total_points = ?, written_points = ?,
				error = ?, finished_unix_nanos = ?
			WHERE export_id = ?`,
			status, path, total, written, msg, c.now().UnixNano(), exportID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update export %s: %w", exportID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update export %s: %w", exportID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, exportID)
	}
	return nil
}

const exportColumns = `export_id, session_id, path, threshold, total_points,
	written_points, status, error, started_unix_nanos, finished_unix_nanos`

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*ExportRecord, error) {
	var rec ExportRecord
	err := s.Scan(&rec.ExportID, &rec.SessionID, &rec.Path, &rec.Threshold, &rec.TotalPoints,
		&rec.WrittenPoints, &rec.Status, &rec.Error, &rec.StartedUnixNanos, &rec.FinishedUnixNanos)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns the export with the given ID.
func (c *Catalog) Get(exportID string) (*ExportRecord, error) {
	row := c.db.QueryRow(`SELECT `+exportColumns+` FROM exports WHERE export_id = ?`, exportID)
	rec, err := scanExport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, exportID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export %s: %w", exportID, err)
	}
	return rec, nil
}

// List returns exports newest first. An empty sessionID lists every
// session; limit <= 0 means no limit.
func (c *Catalog) List(sessionID string, limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`
		SELECT `+exportColumns+`
		FROM exports
		WHERE (? = '' OR session_id = ?)
		ORDER BY started_unix_nanos DESC, export_id
		LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []*ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByStatus returns how many exports are in each status.
func (c *Catalog) CountByStatus() (map[ExportStatus]int, error) {
	rows, err := c.db.Query(`SELECT status, COUNT(*) FROM exports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count exports: %w", err)
	}
	defer rows.Close()

	counts := make(map[ExportStatus]int)
	for rows.Next() {
		var status ExportStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
