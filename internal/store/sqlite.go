package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/engineerTimber/littleYBJ/internal/domain"
)

// SQLiteRepo implements Repo on an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a
// repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep the pool to one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and
// concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Timers ---

// GetTimer returns the unarchived timer with the given name.
func (r *SQLiteRepo) GetTimer(ctx context.Context, name string) (domain.Timer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, hour, minute
		FROM timers
		WHERE name = ? AND archived = 0`,
		name,
	)

	var t domain.Timer
	if err := row.Scan(&t.Name, &t.Hour, &t.Minute); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Timer{}, ErrNotFound
		}
		return domain.Timer{}, err
	}
	t.Kind = domain.KindForName(t.Name)
	return t, nil
}

// ListPersonalTimers returns every unarchived timer whose name does not
// carry the reserved mail prefix, in insertion order.
func (r *SQLiteRepo) ListPersonalTimers(ctx context.Context) ([]domain.Timer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, hour, minute
		FROM timers
		WHERE archived = 0 AND name NOT LIKE ? || '%'
		ORDER BY created_at ASC, name ASC`,
		domain.MailTimerPrefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Timer
	for rows.Next() {
		var t domain.Timer
		if err := rows.Scan(&t.Name, &t.Hour, &t.Minute); err != nil {
			return nil, err
		}
		t.Kind = domain.KindPersonal
		res = append(res, t)
	}
	return res, rows.Err()
}

// CreateTimer inserts a new timer row.
func (r *SQLiteRepo) CreateTimer(ctx context.Context, t domain.Timer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timers (name, hour, minute, archived, created_at)
		VALUES (?, ?, ?, 0, ?)`,
		t.Name, t.Hour, t.Minute, time.Now().UTC().Unix(),
	)
	return err
}

// PatchTimerTime updates hour and minute of an existing timer.
func (r *SQLiteRepo) PatchTimerTime(ctx context.Context, name string, hour, minute int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE timers
		SET hour = ?, minute = ?
		WHERE name = ? AND archived = 0`,
		hour, minute, name,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchiveTimers marks the named timers as archived. Names without a
// matching row are skipped; the registry validates them beforehand.
func (r *SQLiteRepo) ArchiveTimers(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, `
			UPDATE timers SET archived = 1 WHERE name = ? AND archived = 0`,
			name,
		); err != nil {
			return err
		}
	}
	return nil
}

// --- Watermarks ---

// GetWatermark returns the last notified subject for a category.
func (r *SQLiteRepo) GetWatermark(ctx context.Context, category string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT last_subject FROM watermarks WHERE category = ?`,
		category,
	)
	var subject string
	if err := row.Scan(&subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return subject, nil
}

// PutWatermark upserts the last notified subject for a category.
func (r *SQLiteRepo) PutWatermark(ctx context.Context, category, lastSubject string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watermarks (category, last_subject, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			last_subject = excluded.last_subject,
			updated_at   = excluded.updated_at`,
		category, lastSubject, time.Now().UTC().Unix(),
	)
	return err
}

// --- Ideas ---

// ListIdeas returns all unarchived ideas in insertion order.
func (r *SQLiteRepo) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, content
		FROM ideas
		WHERE archived = 0
		ORDER BY created_at ASC, title ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Idea
	for rows.Next() {
		var idea domain.Idea
		if err := rows.Scan(&idea.Title, &idea.Content); err != nil {
			return nil, err
		}
		res = append(res, idea)
	}
	return res, rows.Err()
}

// CreateIdea inserts a new idea row.
func (r *SQLiteRepo) CreateIdea(ctx context.Context, idea domain.Idea) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ideas (title, content, archived, created_at)
		VALUES (?, ?, 0, ?)`,
		idea.Title, idea.Content, time.Now().UTC().Unix(),
	)
	return err
}

// ArchiveIdea marks the idea with the given title as archived.
func (r *SQLiteRepo) ArchiveIdea(ctx context.Context, title string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ideas SET archived = 1 WHERE title = ? AND archived = 0`,
		title,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
