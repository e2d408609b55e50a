package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/backmassage/resolve2edl/internal/edl"
)

//go:embed schema.sql
var schema string

// Result sets stored in the clips table.
const (
	SetPrimary  = "primary"
	SetNoSource = "no_source"
)

// Run describes one pipeline run for the history database.
type Run struct {
	CreatedAt time.Time
	MediaFile string
	EditFile  string
	Output    string
	FPS       int
}

// SQLiteSink appends every run and its clips to a SQLite database so past
// conforms can be queried by clip name.
type SQLiteSink struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteSink{conn: conn}, nil
}

// Close releases the database.
func (s *SQLiteSink) Close() error { return s.conn.Close() }

// Conn exposes the underlying handle for queries.
func (s *SQLiteSink) Conn() *sql.DB { return s.conn }

// WriteRun stores run and both result sets of res in one transaction and
// returns the new run id.
func (s *SQLiteSink) WriteRun(ctx context.Context, run Run, res edl.Result) (id string, err error) {
	id = uuid.NewString()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, media_file, edit_file, output_file, fps, clip_count, no_source_count, duration_issues)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.CreatedAt.UTC().Format(time.RFC3339), run.MediaFile, run.EditFile, run.Output, run.FPS,
		len(res.Clips), len(res.NoSource), len(res.DurationIssues))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clips (run_id, result_set, position, row_index, name, source_in, source_out, record_in, record_out,
		 track, source, reference, fonds, comments, keywords, extension, duration_frames, track_kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare clips: %w", err)
	}
	defer stmt.Close()

	for set, clips := range map[string][]edl.Clip{SetPrimary: res.Clips, SetNoSource: res.NoSource} {
		for pos, c := range clips {
			var frames sql.NullInt64
			var kind sql.NullString
			if c.Derived {
				frames = sql.NullInt64{Int64: int64(c.Duration.Frames), Valid: true}
				kind = sql.NullString{String: c.TrackKind, Valid: true}
			}
			_, err = stmt.ExecContext(ctx, id, set, pos, c.Index, c.Edit.Name,
				c.Edit.SourceIn, c.Edit.SourceOut, c.Edit.RecordIn, c.Edit.RecordOut, c.Edit.Track,
				c.Media.Source, c.Media.Reference, c.Media.Fonds, c.Media.Comments, c.Media.Keywords,
				c.Media.Extension, frames, kind)
			if err != nil {
				return "", fmt.Errorf("insert clip %q: %w", c.Edit.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}
