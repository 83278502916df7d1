// Package mysql implements storage.Store on a MySQL database.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"sproutsync/sprout"
	"sproutsync/storage"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS videos (
		video_id VARCHAR(64) NOT NULL PRIMARY KEY,
		title VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NULL,
		updated_at DATETIME NULL,
		folder VARCHAR(64) NOT NULL DEFAULT '',
		data JSON NOT NULL,
		INDEX idx_videos_created_at (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS sync_states (
		table_name VARCHAR(64) NOT NULL PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL,
		data JSON NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
}

// Store keeps rows and sync state in MySQL.
type Store struct {
	db *sql.DB
}

// Open connects to dsn, verifies the connection and applies migrations.
// parseTime is not required; timestamps are read back from the data column.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool. Call Migrate before first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertVideos(ctx context.Context, videos []sprout.Video) error {
	for _, v := range videos {
		if v.VideoID == "" {
			return &storage.StorageError{Op: "upsert", Entity: "video", Err: storage.ErrInvalidInput}
		}
	}
	if len(videos) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &storage.StorageError{Op: "upsert", Entity: "video", Err: err}
	}
	defer tx.Rollback()

	query := `
		INSERT INTO videos (video_id, title, created_at, updated_at, folder, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			created_at = VALUES(created_at),
			updated_at = VALUES(updated_at),
			folder = VALUES(folder),
			data = VALUES(data)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return &storage.StorageError{Op: "upsert", Entity: "video", Err: err}
	}
	defer stmt.Close()

	for _, v := range videos {
		data, err := json.Marshal(v)
		if err != nil {
			return &storage.StorageError{Op: "upsert", Entity: "video", ID: v.VideoID, Err: err}
		}
		_, err = stmt.ExecContext(ctx,
			v.VideoID,
			v.Title,
			sqlTime(v.CreatedAt),
			sqlTime(v.UpdatedAt),
			v.Folder,
			data,
		)
		if err != nil {
			return &storage.StorageError{Op: "upsert", Entity: "video", ID: v.VideoID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.StorageError{Op: "upsert", Entity: "video", Err: err}
	}
	return nil
}

func (s *Store) GetVideo(ctx context.Context, videoID string) (*sprout.Video, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM videos WHERE video_id = ?`, videoID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.StorageError{Op: "read", Entity: "video", ID: videoID, Err: storage.ErrNotFound}
	}
	if err != nil {
		return nil, &storage.StorageError{Op: "read", Entity: "video", ID: videoID, Err: err}
	}

	var video sprout.Video
	if err := json.Unmarshal(data, &video); err != nil {
		return nil, &storage.StorageError{Op: "read", Entity: "video", ID: videoID, Err: storage.ErrStorageCorrupt}
	}
	return &video, nil
}

func (s *Store) ListVideos(ctx context.Context) ([]sprout.Video, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM videos ORDER BY created_at DESC, video_id ASC`)
	if err != nil {
		return nil, &storage.StorageError{Op: "list", Entity: "video", Err: err}
	}
	defer rows.Close()

	var videos []sprout.Video
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, &storage.StorageError{Op: "list", Entity: "video", Err: err}
		}
		var video sprout.Video
		if err := json.Unmarshal(data, &video); err != nil {
			return nil, &storage.StorageError{Op: "list", Entity: "video", Err: storage.ErrStorageCorrupt}
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "list", Entity: "video", Err: err}
	}
	// created_at is stored in UTC; re-sort so offsets in the original strings
	// order the same way as JSONStore.
	storage.SortNewestFirst(videos)
	return videos, nil
}

func (s *Store) CountVideos(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n); err != nil {
		return 0, &storage.StorageError{Op: "count", Entity: "video", Err: err}
	}
	return n, nil
}

func (s *Store) GetSyncState(ctx context.Context, table string) (*storage.SyncState, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sync_states WHERE table_name = ?`, table).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.StorageError{Op: "read", Entity: "sync_state", ID: table, Err: storage.ErrNotFound}
	}
	if err != nil {
		return nil, &storage.StorageError{Op: "read", Entity: "sync_state", ID: table, Err: err}
	}

	var state storage.SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &storage.StorageError{Op: "read", Entity: "sync_state", ID: table, Err: storage.ErrStorageCorrupt}
	}
	return &state, nil
}

func (s *Store) UpdateSyncState(ctx context.Context, state *storage.SyncState) error {
	if state == nil || state.Table == "" {
		return &storage.StorageError{Op: "update", Entity: "sync_state", Err: storage.ErrInvalidInput}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return &storage.StorageError{Op: "update", Entity: "sync_state", ID: state.Table, Err: err}
	}

	query := `
		INSERT INTO sync_states (table_name, run_id, status, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			run_id = VALUES(run_id),
			status = VALUES(status),
			data = VALUES(data),
			updated_at = VALUES(updated_at)
	`
	_, err = s.db.ExecContext(ctx, query, state.Table, state.RunID, state.Status, data, time.Now().UTC())
	if err != nil {
		return &storage.StorageError{Op: "update", Entity: "sync_state", ID: state.Table, Err: err}
	}
	return nil
}

// sqlTime converts an RFC3339 timestamp to a UTC time for a DATETIME column.
// Unparseable or empty values are stored as NULL.
func sqlTime(s string) any {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return t.UTC()
}

var _ storage.Store = (*Store)(nil)
