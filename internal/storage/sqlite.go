// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/susume/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS watchlist (
		tmdb_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		letterboxd_id INTEGER NOT NULL,
		url TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS supplemental (
		movie_id INTEGER PRIMARY KEY,
		text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS train_runs (
		id TEXT PRIMARY KEY,
		catalog_items INTEGER NOT NULL,
		extra_items INTEGER NOT NULL,
		corpus_items INTEGER NOT NULL,
		dimensions INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_train_runs_finished_at ON train_runs(finished_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveWatchlist upserts watchlist entries keyed by tmdb id.
func (s *SQLiteStorage) SaveWatchlist(ctx context.Context, entries []*models.WatchlistEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO watchlist (tmdb_id, name, letterboxd_id, url, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(tmdb_id) DO UPDATE SET name=excluded.name, letterboxd_id=excluded.letterboxd_id, url=excluded.url`,
			e.TMDBID, e.Name, e.LetterboxdID, e.URL, now,
		); err != nil {
			return fmt.Errorf("save watchlist entry %d: %w", e.TMDBID, err)
		}
	}
	return tx.Commit()
}

// ListWatchlist returns all watchlist entries, oldest first.
func (s *SQLiteStorage) ListWatchlist(ctx context.Context) ([]*models.WatchlistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tmdb_id, name, letterboxd_id, url, created_at FROM watchlist ORDER BY created_at, tmdb_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.TMDBID, &e.Name, &e.LetterboxdID, &e.URL, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// SaveSupplemental upserts supplemental records keyed by movie id.
func (s *SQLiteStorage) SaveSupplemental(ctx context.Context, records []models.SupplementalRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now()
	for _, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO supplemental (movie_id, text, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT(movie_id) DO UPDATE SET text=excluded.text`,
			r.ID, r.Text, now,
		); err != nil {
			return fmt.Errorf("save supplemental record %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// ListSupplemental returns all supplemental records, oldest first.
func (s *SQLiteStorage) ListSupplemental(ctx context.Context) ([]models.SupplementalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT movie_id, text FROM supplemental ORDER BY created_at, movie_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SupplementalRecord
	for rows.Next() {
		var r models.SupplementalRecord
		if err := rows.Scan(&r.ID, &r.Text); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountSupplemental returns the number of supplemental records.
func (s *SQLiteStorage) CountSupplemental(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM supplemental`).Scan(&n)
	return n, err
}

// RecordTrainRun inserts a train-run audit record. A missing id is assigned.
func (s *SQLiteStorage) RecordTrainRun(ctx context.Context, run *models.TrainRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO train_runs (id, catalog_items, extra_items, corpus_items, dimensions, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CatalogItems, run.ExtraItems, run.CorpusItems, run.Dimensions, run.StartedAt, run.FinishedAt,
	)
	return err
}

// LastTrainRun returns the most recently finished train run, or nil when none exist.
func (s *SQLiteStorage) LastTrainRun(ctx context.Context) (*models.TrainRun, error) {
	var run models.TrainRun
	err := s.db.QueryRowContext(ctx,
		`SELECT id, catalog_items, extra_items, corpus_items, dimensions, started_at, finished_at
		 FROM train_runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.CatalogItems, &run.ExtraItems, &run.CorpusItems, &run.Dimensions, &run.StartedAt, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
