// Package store persists scraped port details and run records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	// Registers the pure Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"shipscan/internal/models"
)

// ErrNilRunID indicates a run without an identifier.
var ErrNilRunID = errors.New("run id is required")

const schema = `
CREATE TABLE IF NOT EXISTS "ports_info" (
	"iso" TEXT NOT NULL,
	"seaport" TEXT NOT NULL,
	"lines" TEXT,
	"import_restrictions" TEXT,
	"export_restrictions" TEXT,
	"website" TEXT,
	"run_id" TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ports_info_iso ON ports_info(iso);
CREATE TABLE IF NOT EXISTS "runs" (
	"id" TEXT PRIMARY KEY,
	"input_path" TEXT NOT NULL,
	"input_sha256" TEXT NOT NULL,
	"started_at" TEXT NOT NULL,
	"finished_at" TEXT NOT NULL,
	"rows_read" INTEGER NOT NULL,
	"rows_kept" INTEGER NOT NULL,
	"rows_dropped" INTEGER NOT NULL,
	"ports" INTEGER NOT NULL
);`

// Run is one pipeline execution.
type Run struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	InputPath   string
	InputSHA256 string
	Read        int
	Kept        int
	Dropped     int
	Ports       int
	ID          uuid.UUID
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	// SQLite permits one writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePorts replaces the contents of ports_info with ports in one transaction.
func (s *Store) SavePorts(ctx context.Context, runID uuid.UUID, ports []models.PortInfo) (err error) {
	if runID == uuid.Nil {
		return ErrNilRunID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM "ports_info"`); err != nil {
		return fmt.Errorf("failed to clear ports_info: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "ports_info"
		("iso", "seaport", "lines", "import_restrictions", "export_restrictions", "website", "run_id")
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range ports {
		if _, err = stmt.ExecContext(ctx, p.ISO, p.Seaport, p.Lines, p.ImportRestrictions, p.ExportRestrictions, p.Website, runID.String()); err != nil {
			return fmt.Errorf("failed to insert port %s/%s: %w", p.ISO, p.Seaport, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ports: %w", err)
	}

	return nil
}

// Ports returns the stored ports ordered by iso and seaport.
func (s *Store) Ports(ctx context.Context) ([]models.PortInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT "iso", "seaport", "lines", "import_restrictions", "export_restrictions", "website"
		FROM "ports_info" ORDER BY "iso", "seaport"`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ports: %w", err)
	}
	defer rows.Close()

	var ports []models.PortInfo

	for rows.Next() {
		var p models.PortInfo
		if err := rows.Scan(&p.ISO, &p.Seaport, &p.Lines, &p.ImportRestrictions, &p.ExportRestrictions, &p.Website); err != nil {
			return nil, fmt.Errorf("failed to scan port: %w", err)
		}

		ports = append(ports, p)
	}

	return ports, rows.Err()
}

// RecordRun appends r to the runs table.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	if r.ID == uuid.Nil {
		return ErrNilRunID
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO "runs"
		("id", "input_path", "input_sha256", "started_at", "finished_at", "rows_read", "rows_kept", "rows_dropped", "ports")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.InputPath, r.InputSHA256,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano),
		r.Read, r.Kept, r.Dropped, r.Ports,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}

	return nil
}

// Run loads the run with id.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (*Run, error) {
	var (
		r                 Run
		rawID             string
		started, finished string
	)

	err := s.db.QueryRowContext(ctx, `SELECT "id", "input_path", "input_sha256", "started_at", "finished_at",
		"rows_read", "rows_kept", "rows_dropped", "ports" FROM "runs" WHERE "id" = ?`, id.String()).
		Scan(&rawID, &r.InputPath, &r.InputSHA256, &started, &finished, &r.Read, &r.Kept, &r.Dropped, &r.Ports)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	if r.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", rawID, err)
	}

	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
	}

	if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("invalid finished_at %q: %w", finished, err)
	}

	return &r, nil
}
