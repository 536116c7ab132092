package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"braid/internal/domain"

	_ "modernc.org/sqlite"
)

// Store implements domain.SnapshotStore on a local SQLite file: the
// "device storage" backend. Snapshots are kept as JSON documents with the
// owner and recency lifted into columns for querying.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL DEFAULT '',
	payload       TEXT NOT NULL,
	updated_at_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_user ON snapshots(user_id, updated_at_ns DESC);

CREATE TABLE IF NOT EXISTS shared_snapshots (
	id            TEXT PRIMARY KEY,
	payload       TEXT NOT NULL,
	updated_at_ns INTEGER NOT NULL
);
`

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots(id, user_id, payload, updated_at_ns)
		 VALUES(?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id = excluded.user_id,
		   payload = excluded.payload,
		   updated_at_ns = excluded.updated_at_ns`,
		string(snap.ID), string(snap.UserID), string(payload), snap.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite PutSnapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	return s.getFrom(ctx, "snapshots", id)
}

func (s *Store) DeleteSnapshot(ctx context.Context, id domain.SessionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("sqlite DeleteSnapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSnapshotNotFound
	}
	return nil
}

func (s *Store) ListSnapshots(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Snapshot, error) {
	q := `SELECT payload FROM snapshots WHERE user_id = ? ORDER BY updated_at_ns DESC`
	args := []any{string(userID)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListSnapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlite ListSnapshots scan: %w", err)
		}
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		out = append(out, &snap)
	}
	return out, rows.Err()
}

func (s *Store) PutShared(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shared_snapshots(id, payload, updated_at_ns)
		 VALUES(?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		string(snap.ID), string(payload), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite PutShared: %w", err)
	}
	return nil
}

func (s *Store) GetShared(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	return s.getFrom(ctx, "shared_snapshots", id)
}

func (s *Store) getFrom(ctx context.Context, table string, id domain.SessionID) (*domain.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM `+table+` WHERE id = ?`, string(id),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get from %s: %w", table, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", id, err)
	}
	return &snap, nil
}
