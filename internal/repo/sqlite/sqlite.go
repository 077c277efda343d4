package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/repo"
)

var _ repo.RunStore = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			total INTEGER NOT NULL,
			alive INTEGER NOT NULL,
			unstable INTEGER NOT NULL,
			dead INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) SaveRun(ctx context.Context, rec *domain.RunRecord) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (source, total, alive, unstable, dead, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Source, rec.Total, rec.Alive, rec.Unstable, rec.Dead, rec.StartedAt, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, total, alive, unstable, dead, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RunRecord, 0, limit)
	for rows.Next() {
		var r domain.RunRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Total, &r.Alive, &r.Unstable, &r.Dead, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LastRun(ctx context.Context) (*domain.RunRecord, error) {
	var r domain.RunRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, total, alive, unstable, dead, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT 1`).
		Scan(&r.ID, &r.Source, &r.Total, &r.Alive, &r.Unstable, &r.Dead, &r.StartedAt, &r.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
