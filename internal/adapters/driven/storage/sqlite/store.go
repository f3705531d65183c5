package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// Store is a SQLite-backed run history ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sftgen/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sftgen", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveReport stores a completed run's report with its file outcomes.
// Saving the same run twice replaces the previous record.
func (s *Store) SaveReport(ctx context.Context, report *domain.Report) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: report needs a run ID", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, input_path, output_path, started_at, duration_ms,
			 files_discovered, files_processed, files_failed, files_skipped,
			 chunks_processed, chunks_failed, pairs_written)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			input_path = excluded.input_path,
			output_path = excluded.output_path,
			started_at = excluded.started_at,
			duration_ms = excluded.duration_ms,
			files_discovered = excluded.files_discovered,
			files_processed = excluded.files_processed,
			files_failed = excluded.files_failed,
			files_skipped = excluded.files_skipped,
			chunks_processed = excluded.chunks_processed,
			chunks_failed = excluded.chunks_failed,
			pairs_written = excluded.pairs_written
	`, report.RunID, report.InputPath, report.OutputPath,
		report.StartedAt.UTC(), report.Duration.Milliseconds(),
		report.FilesDiscovered, report.FilesProcessed, report.FilesFailed,
		report.FilesSkipped, report.ChunksProcessed, report.ChunksFailed,
		report.PairsWritten)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	// Replace the file outcomes wholesale
	if _, err := tx.ExecContext(ctx, "DELETE FROM run_files WHERE run_id = ?", report.RunID); err != nil {
		return fmt.Errorf("clearing run files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_files
			(run_id, position, path, state, stage, error,
			 chunks_total, chunks_failed, pairs_written, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, file := range report.Files {
		if _, err := stmt.ExecContext(ctx, report.RunID, i, file.Path,
			file.State.String(), file.Stage.String(), file.Error,
			file.ChunksTotal, file.ChunksFailed, file.PairsWritten,
			file.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("saving file outcome %s: %w", file.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListReports returns run summaries, most recent first, without
// per-file outcomes. Limit <= 0 means no limit.
func (s *Store) ListReports(ctx context.Context, limit int) ([]domain.Report, error) {
	query := `
		SELECT id, input_path, output_path, started_at, duration_ms,
		       files_discovered, files_processed, files_failed, files_skipped,
		       chunks_processed, chunks_failed, pairs_written
		FROM runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report //nolint:prealloc // size unknown from query
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return reports, nil
}

// GetReport returns one run with its per-file outcomes.
func (s *Store) GetReport(ctx context.Context, runID string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, input_path, output_path, started_at, duration_ms,
		       files_discovered, files_processed, files_failed, files_skipped,
		       chunks_processed, chunks_failed, pairs_written
		FROM runs WHERE id = ?
	`, runID)

	report, err := scanRunRow(row)
	if err != nil {
		return nil, err
	}

	files, err := s.runFiles(ctx, runID)
	if err != nil {
		return nil, err
	}
	report.Files = files

	return report, nil
}

// runFiles loads a run's file outcomes in discovery order.
func (s *Store) runFiles(ctx context.Context, runID string) ([]domain.FileResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, state, stage, error,
		       chunks_total, chunks_failed, pairs_written, duration_ms
		FROM run_files WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run files: %w", err)
	}
	defer rows.Close()

	var files []domain.FileResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var file domain.FileResult
		var state, stage string
		var durationMS int64
		if err := rows.Scan(&file.Path, &state, &stage, &file.Error,
			&file.ChunksTotal, &file.ChunksFailed, &file.PairsWritten,
			&durationMS); err != nil {
			return nil, fmt.Errorf("scanning run file: %w", err)
		}
		file.State = domain.FileState(state)
		file.Stage = domain.Stage(stage)
		file.Duration = time.Duration(durationMS) * time.Millisecond
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run files: %w", err)
	}

	return files, nil
}

// scanRun scans a run summary from *sql.Rows.
func scanRun(rows *sql.Rows) (*domain.Report, error) {
	var report domain.Report
	var startedAt sql.NullTime
	var durationMS int64

	if err := rows.Scan(&report.RunID, &report.InputPath, &report.OutputPath,
		&startedAt, &durationMS,
		&report.FilesDiscovered, &report.FilesProcessed, &report.FilesFailed,
		&report.FilesSkipped, &report.ChunksProcessed, &report.ChunksFailed,
		&report.PairsWritten); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if startedAt.Valid {
		report.StartedAt = startedAt.Time
	}
	report.Duration = time.Duration(durationMS) * time.Millisecond

	return &report, nil
}

// scanRunRow scans a run summary from *sql.Row.
func scanRunRow(row *sql.Row) (*domain.Report, error) {
	var report domain.Report
	var startedAt sql.NullTime
	var durationMS int64

	if err := row.Scan(&report.RunID, &report.InputPath, &report.OutputPath,
		&startedAt, &durationMS,
		&report.FilesDiscovered, &report.FilesProcessed, &report.FilesFailed,
		&report.FilesSkipped, &report.ChunksProcessed, &report.ChunksFailed,
		&report.PairsWritten); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if startedAt.Valid {
		report.StartedAt = startedAt.Time
	}
	report.Duration = time.Duration(durationMS) * time.Millisecond

	return &report, nil
}
